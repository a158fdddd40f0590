package sqlite

// schemaSQL creates the query tables. JSONL files remain the source of
// truth; the database is rebuilt from them on every Attach. Money is TEXT so
// decimal amounts round-trip exactly and dates are ISO TEXT.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    mail TEXT NOT NULL DEFAULT '',
    phone_num TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cars (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    license_plate TEXT NOT NULL DEFAULT '',
    make TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    year INTEGER,
    client_id INTEGER REFERENCES clients(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS car_services (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT,
    description TEXT NOT NULL DEFAULT '',
    total_cost TEXT,
    car_id INTEGER REFERENCES cars(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_cars_client ON cars(client_id);
CREATE INDEX IF NOT EXISTS idx_car_services_car ON car_services(car_id);
CREATE INDEX IF NOT EXISTS idx_car_services_date ON car_services(date);
`
