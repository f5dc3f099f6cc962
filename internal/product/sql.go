package product

const getAllProductsSQL = `
SELECT product_id, product_name, image_url, permalink
FROM product
ORDER BY product_name
`

const getProductSQL = `
SELECT product_id, product_name, image_url, permalink
FROM product
WHERE product_id = ?
`

// a zero id lets SQLite assign the next rowid
const createProductSQL = `
INSERT INTO product (
    product_id, product_name, image_url, permalink
) VALUES (NULLIF(?, 0), ?, ?, ?)
`

const updateProductSQL = `
UPDATE product
SET product_name = ?, image_url = ?, permalink = ?
WHERE product_id = ?
`

const deleteProductSQL = `
DELETE FROM product
WHERE product_id = ?
`
