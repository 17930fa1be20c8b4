package mysql

const hotelColumns = `h.id, h.name, h.address1, h.address2, h.zipcode, h.city, h.country,
  h.lat, h.lng, h.description, h.max_capacity, h.price_per_night, h.created_at, h.updated_at`

const pictureColumns = `id, hotel_id, filepath, filesize, position, created_at, updated_at`

const insertHotelSQL = `
INSERT INTO hotels
  (name, address1, address2, zipcode, city, country, lat, lng, description, max_capacity, price_per_night)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertPictureSQL = `
INSERT INTO hotels_pictures (hotel_id, filepath, filesize, position)
VALUES (?, ?, ?, ?)
`

const getHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels h WHERE h.id = ?`

const hotelExistsSQL = `SELECT 1 FROM hotels WHERE id = ?`

const getPictureSQL = `SELECT ` + pictureColumns + ` FROM hotels_pictures WHERE id = ?`

// Ties on position fall back to id so every read path returns the same order.
const listPicturesSQL = `
SELECT ` + pictureColumns + `
FROM hotels_pictures
WHERE hotel_id = ?
ORDER BY position, id
`

const deletePictureSQL = `DELETE FROM hotels_pictures WHERE id = ? AND hotel_id = ?`

const setPicturePositionSQL = `
UPDATE hotels_pictures
SET position = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND hotel_id = ?
`

const deleteHotelPicturesSQL = `DELETE FROM hotels_pictures WHERE hotel_id = ?`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// -----------------------------------------------------------------------------
// LISTING
// -----------------------------------------------------------------------------

// city is compared with a binary collation: the filter is case-sensitive.
const (
	whereName = `LOWER(h.name) LIKE ? ESCAPE '\\'`
	whereCity = `h.city = ? COLLATE utf8mb4_bin`
)

// allow-listed ORDER BY columns, keyed by domain.SortField
var sortColumns = map[string]string{
	"name":            "h.name",
	"city":            "h.city",
	"price_per_night": "h.price_per_night",
}
