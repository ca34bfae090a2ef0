package sqlinline

const QListCurrentVillages = `--sql a5f058f0-95e7-4c90-b096-179319c8e5a4
select village_id, name, is_main_village, is_city
from villages
where account_id = $1::uuid
order by name asc;
`
