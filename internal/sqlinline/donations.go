package sqlinline

// QInsertDonation returns no row when the charge id is already recorded.
const QInsertDonation = `--sql 755b5a79-77f5-47e1-a7c4-d03d8946aed9
insert into donation (stripe_charge_id, merchant_id, donator_email, amount, time)
values ($1::text, $2::bigint, $3::text, $4::bigint, $5::timestamptz)
on conflict (stripe_charge_id) do nothing
returning id;
`

const QDonationExistsByChargeID = `--sql 500d2191-3f6c-40c6-bb4c-4b57ee2617d7
select exists(select 1 from donation where stripe_charge_id = $1::text);
`

const QListDonationsForMerchant = `--sql b780aa9a-a7c9-4980-9f62-0edb46a048af
select id, stripe_charge_id, merchant_id, donator_email, amount, time
from donation
where merchant_id = $1::bigint
order by time desc, id desc;
`

const QCountDonationsForMerchant = `--sql 1ca074fe-6103-40ec-a528-473eed6b7543
select count(*)
from donation
where merchant_id = $1::bigint;
`

const QDonationTotals = `--sql e6e153a6-1905-4419-a3b2-9fa112f949f6
select count(*), count(distinct merchant_id)
from donation;
`
