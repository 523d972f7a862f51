package mysql

// Inserts skip existing keys: "ON DUPLICATE KEY UPDATE pk = pk" leaves the row
// untouched and reports 0 affected rows, 1 for a fresh insert.

const insertChainSQL = `
INSERT INTO chains (chain_id, chain_name)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE chain_id = chain_id
`

const insertHotelSQL = `
INSERT INTO hotels (hotel_id, hotel_name, chain_id, latitude, longitude)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE hotel_id = hotel_id
`

const insertImageSQL = `
INSERT INTO images (image_id, hotel_id, image_url)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE image_id = image_id
`

const insertImageTagSQL = `
INSERT INTO image_tags (image_id, tag_name, confidence_score)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE image_id = image_id
`

const insertAvailabilitySQL = `
INSERT INTO availability_price (hotel_id, date, availability, price, currency)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = id
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listChainsSQL = `SELECT chain_id, chain_name FROM chains ORDER BY chain_id`

const getHotelSQL = `
SELECT hotel_id, hotel_name, chain_id, latitude, longitude
FROM hotels
WHERE hotel_id = ?
`

const getChainNameSQL = `SELECT chain_name FROM chains WHERE chain_id = ?`

// Hotels page with the chain name; images are fetched per page.
const listHotelsSQL = `
SELECT h.hotel_id, h.hotel_name, h.chain_id, h.latitude, h.longitude, c.chain_name
FROM hotels h
LEFT JOIN chains c ON c.chain_id = h.chain_id
ORDER BY h.hotel_id
LIMIT ? OFFSET ?
`

const listHotelIDsSQL = `SELECT hotel_id FROM hotels ORDER BY hotel_id`

const listImagesSQL = `
SELECT image_id, hotel_id, image_url
FROM images
WHERE hotel_id = ?
ORDER BY image_id
`

const listAllImagesSQL = `SELECT image_id, hotel_id, image_url FROM images ORDER BY image_id`

const listImageTagsSQL = `
SELECT image_id, tag_name, confidence_score
FROM image_tags
WHERE image_id = ?
ORDER BY confidence_score DESC, tag_name
`

const listAvailabilitySQL = `
SELECT id, hotel_id, date, availability, price, currency
FROM availability_price
WHERE hotel_id = ? AND date BETWEEN ? AND ?
ORDER BY date
`

// Images carrying a tag matching the pattern (case-insensitive), joined with
// the hotel's prices inside the price and date window. Hotels without a
// matching price row drop out.
const searchImagesSQL = `
SELECT i.image_id, i.image_url, h.hotel_id, h.hotel_name, h.latitude, h.longitude, AVG(a.price)
FROM images i
JOIN hotels h ON h.hotel_id = i.hotel_id
JOIN availability_price a ON a.hotel_id = h.hotel_id
WHERE EXISTS (
    SELECT 1 FROM image_tags t
    WHERE t.image_id = i.image_id AND LOWER(t.tag_name) LIKE LOWER(?) ESCAPE '!'
  )
  AND a.price BETWEEN ? AND ?
  AND a.date BETWEEN ? AND ?
GROUP BY i.image_id, i.image_url, h.hotel_id, h.hotel_name, h.latitude, h.longitude
ORDER BY i.image_id
LIMIT ?
`

// matching tags of a hit list; the IN list is expanded per call
const searchTagsPrefix = `
SELECT image_id, tag_name, confidence_score
FROM image_tags
WHERE LOWER(tag_name) LIKE LOWER(?) ESCAPE '!' AND image_id IN (`

const searchTagsSuffix = `)
ORDER BY image_id, confidence_score DESC, tag_name`

const listHotelImagesPrefix = `
SELECT image_id, hotel_id, image_url
FROM images
WHERE hotel_id IN (`

const listHotelImagesSuffix = `)
ORDER BY hotel_id, image_id`
