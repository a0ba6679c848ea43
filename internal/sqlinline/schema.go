package sqlinline

// Schema lists the idempotent DDL statements the jar needs, in order.
var Schema = []string{QCreateMerchantTable, QCreateDonationTable, QCreateDonationMerchantIndex}

const QCreateMerchantTable = `--sql 0f67f961-019b-4160-b1de-8478ae101982
create table if not exists merchant (
    id                     bigserial primary key,
    stripe_user_id         varchar(50) not null unique,
    email                  varchar(254) not null default '',
    name                   varchar(100) not null default '',
    phone                  varchar(32) not null default '',
    url                    varchar(512) not null default '',
    country                varchar(2) not null default '',
    currency               varchar(3) not null default '',
    stripe_publishable_key varchar(255) not null default '',
    stripe_secret_key      varchar(255) not null default '',
    refresh_token          varchar(255) not null default '',
    created_at             timestamptz not null default now(),
    updated_at             timestamptz not null default now()
);
`

const QCreateDonationTable = `--sql 31722d56-dcc4-462e-b70e-d590ee17ca10
create table if not exists donation (
    id               bigserial primary key,
    stripe_charge_id varchar(255) not null unique,
    merchant_id      bigint not null references merchant(id),
    donator_email    varchar(254) not null,
    amount           bigint not null check (amount > 0),
    time             timestamptz not null default now()
);
`

const QCreateDonationMerchantIndex = `--sql 1f497f75-8b1b-4ce8-9d06-e731a2d8617f
create index if not exists donation_merchant_time_idx on donation (merchant_id, time desc);
`
