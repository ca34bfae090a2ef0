package sqlinline

const QAccountOwnedBy = `--sql f9f97ee3-c629-43e9-98e8-975df82d2968
select 1
from accounts
where id = $1::uuid
  and user_id = $2::uuid;
`
