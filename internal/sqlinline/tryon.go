package sqlinline

const QInsertTryonJob = `--sql ed5ae77b-c581-454b-89d5-3acf52f08844
insert into tryon_jobs (id, user_id, status, preset_id, anchor_zone, options, country, created_at, updated_at)
values ($1::uuid, $2::uuid, 'QUEUED', $3::text, $4::text, coalesce($5::jsonb, '{}'::jsonb), nullif($6::text, ''), now(), now())
returning id;
`

const QSelectJobForUser = `--sql 5488bae0-9953-4c6d-9c8d-a4c908af8565
select id, user_id, status, preset_id, anchor_zone, options, coalesce(error, ''), debug, created_at, updated_at
from tryon_jobs
where id = $1::uuid and user_id = $2::uuid
limit 1;
`

const QSelectJobByID = `--sql cad66607-c5e0-4def-ae50-c8574e8fd5c3
select id, user_id, status, preset_id, anchor_zone, options, coalesce(error, ''), debug, created_at, updated_at
from tryon_jobs
where id = $1::uuid
limit 1;
`

const QMarkJobRunning = `--sql 0ec3ada8-155a-4b5e-973d-7d66df9cc4ae
update tryon_jobs
set status = 'RUNNING', updated_at = now()
where id = $1::uuid and status = 'QUEUED';
`

const QMarkJobSucceeded = `--sql 8ea35a48-191f-4e47-b9bc-5d43717b2224
update tryon_jobs
set status = 'SUCCEEDED', debug = coalesce($2::jsonb, '{}'::jsonb), updated_at = now()
where id = $1::uuid;
`

const QMarkJobFailed = `--sql 147059fa-4521-46f0-b674-ece04b9a40ec
update tryon_jobs
set status = 'FAILED', error = $2::text, debug = coalesce($3::jsonb, '{}'::jsonb), updated_at = now()
where id = $1::uuid;
`

const QInsertTryonAsset = `--sql 93fd689c-c455-4cde-9b56-2b0774bfa59e
insert into tryon_assets (id, job_id, user_id, kind, storage_key, mime, bytes, width, height, properties, created_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::bigint, $7::int, $8::int, coalesce($9::jsonb, '{}'::jsonb), now())
returning id;
`

const QSelectJobAssets = `--sql 968b0d94-231c-41b7-ab73-e1f0eb818337
select id, kind, storage_key, mime, bytes, width, height, properties, created_at
from tryon_assets
where job_id = $1::uuid and user_id = $2::uuid
order by created_at asc;
`
