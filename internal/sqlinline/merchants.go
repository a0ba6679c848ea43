package sqlinline

const QSelectMerchantByID = `--sql 58e4ee7c-5411-41af-8a14-8f0aa22ded0a
select id, stripe_user_id, email, name, phone, url, country, currency,
       stripe_publishable_key, stripe_secret_key, refresh_token, created_at, updated_at
from merchant
where id = $1::bigint;
`

const QSelectMerchantByStripeUserID = `--sql 0fe1a555-4612-4d84-9b90-09bb5c85e4fd
select id, stripe_user_id, email, name, phone, url, country, currency,
       stripe_publishable_key, stripe_secret_key, refresh_token, created_at, updated_at
from merchant
where stripe_user_id = $1::text;
`

const QUpsertMerchant = `--sql 80b30483-3100-434a-b1b9-48b94fb3bc52
insert into merchant (stripe_user_id, email, name, phone, url, country, currency,
                      stripe_publishable_key, stripe_secret_key, refresh_token, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::text, $10::text, now(), now())
on conflict (stripe_user_id) do update set
    email = excluded.email,
    name = excluded.name,
    phone = excluded.phone,
    url = excluded.url,
    country = excluded.country,
    currency = excluded.currency,
    stripe_publishable_key = excluded.stripe_publishable_key,
    stripe_secret_key = excluded.stripe_secret_key,
    refresh_token = excluded.refresh_token,
    updated_at = now()
returning id, stripe_user_id, email, name, phone, url, country, currency,
          stripe_publishable_key, stripe_secret_key, refresh_token, created_at, updated_at;
`

const QUpdateMerchantProfile = `--sql 3a885001-bb85-414e-8dd5-9e722d068304
update merchant set
    email = $2::text,
    name = $3::text,
    phone = $4::text,
    url = $5::text,
    country = $6::text,
    currency = $7::text,
    updated_at = now()
where id = $1::bigint;
`

const QListMerchants = `--sql 43e61d05-b22a-4224-b221-b4d4061a0264
select id, stripe_user_id, email, name, phone, url, country, currency,
       stripe_publishable_key, stripe_secret_key, refresh_token, created_at, updated_at
from merchant
order by id;
`
