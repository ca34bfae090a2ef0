package sqlinline

const QSelectCollectorToken = `--sql bf0817a7-d5c8-4a23-8ff5-e620e754f793
select id, account_id, token, last_used_at, created_at
from tokens
where token = $1::text
limit 1;
`

const QInsertTokenUsage = `--sql d6c32cea-c8c3-4912-b8fe-75227836eebb
insert into token_usages (id, token_id, used_at, ip_address, user_agent, country_code)
values (gen_random_uuid(), $1::uuid, $2::timestamptz, $3::text, $4::text, $5::text);
`

const QTouchTokenLastUsed = `--sql 7434bf67-1df7-45a7-9ad7-555e6738eb59
update tokens
set last_used_at = now()
where id = $1::uuid;
`

const QInsertCollectorToken = `--sql b93e53e7-c6df-474a-ade6-c4ceca531bbd
insert into tokens (id, account_id, token, created_at)
values (gen_random_uuid(), $1::uuid, $2::text, now())
returning id;
`
