package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hotel_listings/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// CreateHotel inserts the hotel and its gallery in one transaction.
func (r *Repo) CreateHotel(ctx context.Context, f domain.HotelFields, pics []domain.NewPicture) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertHotelSQL,
		f.Name,
		f.Address1,
		valStr(f.Address2),
		f.Zipcode,
		f.City,
		f.Country,
		f.Lat,
		f.Lng,
		f.Description,
		f.MaxCapacity,
		f.PricePerNight,
	)
	if err != nil {
		return 0, fmt.Errorf("insert hotel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, p := range pics {
		if _, err := tx.ExecContext(ctx, insertPictureSQL, id, p.Filepath, p.Filesize, p.Position); err != nil {
			return 0, fmt.Errorf("insert picture %s: %w", p.Filepath, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateHotel writes only the submitted columns.
func (r *Repo) UpdateHotel(ctx context.Context, id int64, in domain.HotelInput) error {
	var sets []string
	var args []any
	str := func(col string, o domain.Optional[string]) {
		if !o.Set {
			return
		}
		sets = append(sets, col+" = ?")
		if o.Null {
			args = append(args, nil)
		} else {
			args = append(args, o.Value)
		}
	}
	num := func(col string, set, null bool, v any) {
		if !set || null {
			return
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	str("name", in.Name)
	str("address1", in.Address1)
	str("address2", in.Address2)
	str("zipcode", in.Zipcode)
	str("city", in.City)
	str("country", in.Country)
	str("description", in.Description)
	num("lat", in.Lat.Set, in.Lat.Null, in.Lat.Value)
	num("lng", in.Lng.Set, in.Lng.Null, in.Lng.Value)
	num("max_capacity", in.MaxCapacity.Set, in.MaxCapacity.Null, in.MaxCapacity.Value)
	num("price_per_night", in.PricePerNight.Set, in.PricePerNight.Null, in.PricePerNight.Value)

	if len(sets) == 0 {
		return r.exists(ctx, id)
	}
	q := "UPDATE hotels SET " + strings.Join(sets, ", ") + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return err
	}
	// MySQL reports changed rows, not matched rows: zero can mean "same values".
	if n, _ := res.RowsAffected(); n == 0 {
		return r.exists(ctx, id)
	}
	return nil
}

// DeleteHotel removes the gallery rows and the hotel in one transaction.
func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteHotelPicturesSQL, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *Repo) AddPicture(ctx context.Context, hotelID int64, p domain.NewPicture) (domain.Picture, error) {
	res, err := r.db.ExecContext(ctx, insertPictureSQL, hotelID, p.Filepath, p.Filesize, p.Position)
	if err != nil {
		return domain.Picture{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Picture{}, err
	}
	return scanPicture(r.db.QueryRowContext(ctx, getPictureSQL, id))
}

func (r *Repo) DeletePicture(ctx context.Context, hotelID, pictureID int64) error {
	res, err := r.db.ExecContext(ctx, deletePictureSQL, pictureID, hotelID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPicturePosition ignores pictures the hotel does not own.
func (r *Repo) SetPicturePosition(ctx context.Context, hotelID, pictureID int64, position int) error {
	_, err := r.db.ExecContext(ctx, setPicturePositionSQL, position, pictureID, hotelID)
	return err
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	if h.Pictures, err = r.ListPictures(ctx, id); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, int, error) {
	var where []string
	var args []any
	if q.Name != nil {
		where = append(where, whereName)
		args = append(args, "%"+escapeLike(strings.ToLower(*q.Name))+"%")
	}
	if q.City != nil {
		where = append(where, whereCity)
		args = append(args, *q.City)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels h"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 || q.Offset() >= total {
		return []domain.Hotel{}, total, nil
	}

	order := " ORDER BY h.id"
	if col, ok := sortColumns[string(q.Sort)]; ok {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		order = " ORDER BY " + col + " " + dir + ", h.id"
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels h"+cond+order+" LIMIT ? OFFSET ?",
		append(args, q.PerPage, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachPictures(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) ListPictures(ctx context.Context, hotelID int64) ([]domain.Picture, error) {
	rows, err := r.db.QueryContext(ctx, listPicturesSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Picture{}
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// attachPictures loads the galleries of a page with a single IN query.
func (r *Repo) attachPictures(ctx context.Context, hs []domain.Hotel) error {
	if len(hs) == 0 {
		return nil
	}
	idx := make(map[int64]int, len(hs))
	marks := make([]string, len(hs))
	args := make([]any, len(hs))
	for i := range hs {
		idx[hs[i].ID] = i
		hs[i].Pictures = []domain.Picture{}
		marks[i] = "?"
		args[i] = hs[i].ID
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+pictureColumns+" FROM hotels_pictures WHERE hotel_id IN ("+strings.Join(marks, ",")+") ORDER BY hotel_id, position, id",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return err
		}
		if i, ok := idx[p.HotelID]; ok {
			hs[i].Pictures = append(hs[i].Pictures, p)
		}
	}
	return rows.Err()
}

func (r *Repo) exists(ctx context.Context, id int64) error {
	var one int
	if err := r.db.QueryRowContext(ctx, hotelExistsSQL, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var addr2 sql.NullString
	if err := s.Scan(
		&h.ID,
		&h.Name,
		&h.Address1,
		&addr2,
		&h.Zipcode,
		&h.City,
		&h.Country,
		&h.Lat, &h.Lng,
		&h.Description,
		&h.MaxCapacity,
		&h.PricePerNight,
		&h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}
	if addr2.Valid {
		a := addr2.String
		h.Address2 = &a
	}
	return h, nil
}

func scanPicture(s scanner) (domain.Picture, error) {
	var p domain.Picture
	err := s.Scan(&p.ID, &p.HotelID, &p.Filepath, &p.Filesize, &p.Position, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
