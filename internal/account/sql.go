package account

const getAllAccountsSQL = `
SELECT user_id, user_login, email, display_name
FROM account
ORDER BY user_login
`

const getAccountSQL = `
SELECT user_id, user_login, email, display_name
FROM account
WHERE user_id = ?
`

const createAccountSQL = `
INSERT INTO account (
    user_id, user_login, email, display_name
) VALUES (?, ?, ?, ?)
`

const updateAccountSQL = `
UPDATE account
SET user_login = ?, email = ?, display_name = ?
WHERE user_id = ?
`

const deleteAccountSQL = `
DELETE FROM account
WHERE user_id = ?
`
