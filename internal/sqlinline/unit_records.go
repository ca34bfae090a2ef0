package sqlinline

// The batch payload arrives as a jsonb array so the whole batch lands in one
// INSERT statement; a concurrent history read sees all rows or none.
const QInsertUnitRecordBatch = `--sql 018cc68f-8c0e-4d85-babc-b38b34fe57ff
insert into unit_records (id, account_id, village_id, units, captured_at)
select
    gen_random_uuid(),
    $1::uuid,
    record->>'villageId',
    (select coalesce(array_agg(value::bigint), '{}') from jsonb_array_elements_text(record->'units')),
    (record->>'capturedAt')::timestamptz
from jsonb_array_elements($2::jsonb) as record;
`

const QListUnitRecordsInRange = `--sql 578a6806-594f-4b37-a624-de9c708e8dd8
select village_id, units, captured_at
from unit_records
where account_id = $1::uuid
  and captured_at >= $2::timestamptz
  and captured_at < $3::timestamptz
order by captured_at asc, id asc;
`

const QLatestUnitRecordsPerVillage = `--sql a11f178e-b854-47f9-b7ca-9686c972b3a8
select distinct on (village_id) village_id, units, captured_at
from unit_records
where account_id = $1::uuid
order by village_id, captured_at desc, id desc;
`
