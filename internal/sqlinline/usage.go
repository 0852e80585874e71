package sqlinline

const QInsertUsageEvent = `--sql 14e3a37b-5204-49cf-8191-c9c516a86160
insert into usage_events (id, user_id, job_id, provider, model, event_type, units, estimated_usd, success, latency_ms, created_at, properties)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::int, $7::numeric, $8::boolean, $9::int, now(), coalesce($10::jsonb, '{}'::jsonb));
`

const QCostSummary = `--sql 04999789-f4d2-4721-80e0-9f035281380b
select
  provider,
  model,
  count(*)                                   as calls,
  coalesce(sum(units), 0)                    as units,
  coalesce(sum(estimated_usd), 0)            as estimated_usd,
  count(*) filter (where not success)        as failures
from usage_events
where created_at > now() - ($1::int * interval '1 day')
group by provider, model
order by estimated_usd desc;
`
