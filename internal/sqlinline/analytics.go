package sqlinline

const QAnalyticsSummary = `--sql f9ac3439-6d69-4aea-9468-c95504c88c0e
select
  (select count(*) from users)                                                  as total_users,
  (select count(*) from tryon_jobs)                                             as total_jobs,
  (select count(*) from tryon_jobs where status = 'SUCCEEDED')                  as jobs_succeeded,
  (select count(*) from tryon_jobs where status = 'FAILED')                     as jobs_failed,
  (select count(*) from tryon_jobs where created_at > now() - interval '24 hours') as jobs_last24;
`

const QAnalyticsTopPresets = `--sql 32c56a94-b218-45dd-8a6f-6c8fcdf64544
select preset_id, count(*) as uses
from tryon_jobs
group by preset_id
order by uses desc, preset_id asc
limit $1::int;
`

const QAnalyticsCountries = `--sql 03d5e034-c327-4487-aead-85044e8e145d
select coalesce(country, 'unknown') as country, count(*) as jobs
from tryon_jobs
group by country
order by jobs desc, country asc
limit $1::int;
`
