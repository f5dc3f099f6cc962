package registration

const selectRegistrationSQL = `
SELECT
    registration_id,
    user_id,
    product_id,
    serial_number,
    registration_date,
    purchase_proof
FROM product_registration
`

const getRegistrationSQL = selectRegistrationSQL + `WHERE registration_id = ?`

const getRegistrationBySerialSQL = selectRegistrationSQL + `WHERE serial_number = ?`

const selectEntrySQL = `
SELECT
    r.registration_id,
    r.user_id,
    r.product_id,
    r.serial_number,
    r.registration_date,
    r.purchase_proof,
    COALESCE(p.product_name, '') AS product_name,
    COALESCE(a.user_login, '') AS user_login
FROM product_registration r
LEFT JOIN product p ON p.product_id = r.product_id
LEFT JOIN account a ON a.user_id = r.user_id
`

const getAllEntriesSQL = selectEntrySQL + `
ORDER BY r.registration_date DESC, r.registration_id DESC
`

const getEntrySQL = selectEntrySQL + `
WHERE r.registration_id = ?
`

const getEntriesForUserSQL = selectEntrySQL + `
WHERE r.user_id = ?
ORDER BY r.registration_date DESC, r.registration_id DESC
`

const createRegistrationSQL = `
INSERT INTO product_registration (
    user_id,
    product_id,
    serial_number,
    registration_date
) VALUES (0, ?, ?, ?)
`

/*
The claim is the only statement that moves a row out of the unclaimed state.
user_id = 0 in the WHERE clause makes it a compare-and-set: of two concurrent
claims for one serial, the second matches nothing.
*/
const claimRegistrationSQL = `
UPDATE product_registration
SET
    user_id = ?,
    registration_date = ?,
    purchase_proof = ?
WHERE serial_number = ? AND product_id = ? AND user_id = 0
`

const updateRegistrationSQL = `
UPDATE product_registration
SET
    serial_number = ?,
    product_id = ?
WHERE registration_id = ?
`

const deleteRegistrationSQL = `
DELETE FROM product_registration
WHERE registration_id = ?
`
