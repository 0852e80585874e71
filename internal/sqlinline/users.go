package sqlinline

const QUpsertUserByEmail = `--sql 3f21ac35-c53e-4762-91bd-2dcfb46bb142
insert into users (id, email, display_name, plan, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, 'free', '{}'::jsonb, now(), now())
on conflict (email) do update set
  updated_at = now()
returning id, plan;
`

const QSelectUserByID = `--sql 086d5287-d4bb-41fc-833a-839c78093a72
select id, email, display_name, plan, properties, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QUpdateUserProfile = `--sql 31f6553f-0572-49c5-8754-68b756e3b6cf
update users
set
  display_name = coalesce(nullif($2::text, ''), display_name),
  properties   = properties || coalesce($3::jsonb, '{}'::jsonb),
  updated_at   = now()
where id = $1::uuid
returning id, email, display_name, plan, properties, created_at, updated_at;
`
