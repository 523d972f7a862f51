package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"hotel_pipeline/internal/domain"
)

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
func ptrF64(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// MySQL server error numbers the loader distinguishes.
const (
	errDupEntry             = 1062
	errNoReferencedRow      = 1452
	errNoReferencedRowOld   = 1216
	errOutOfRange           = 1264
	errTruncatedWrongValue  = 1366
	errDataTooLong          = 1406
	errCheckConstraintFails = 3819
)

// classify maps driver errors onto domain sentinels.
func classify(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case errNoReferencedRow, errNoReferencedRowOld:
		return fmt.Errorf("%w: %s", domain.ErrMissingParent, me.Message)
	case errCheckConstraintFails, errOutOfRange, errTruncatedWrongValue, errDataTooLong:
		return fmt.Errorf("%w: %s", domain.ErrInvalidRecord, me.Message)
	}
	return err
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var (
	_ domain.CatalogWriter = (*Repo)(nil)
	_ domain.CatalogReader = (*Repo)(nil)
)

// Open connects and pings. One connection suffices for a batch stage.
func Open(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// insertOne runs a single-row insert in its own transaction; a failure rolls
// back only this row. A duplicate key is a skip, not an error.
func (r *Repo) insertOne(ctx context.Context, query string, args ...any) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, classify(err)
	}
	return n == 1, nil
}

func (r *Repo) UpsertChain(ctx context.Context, c domain.Chain) (bool, error) {
	return r.insertOne(ctx, insertChainSQL, c.ID, c.Name)
}

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) (bool, error) {
	return r.insertOne(ctx, insertHotelSQL, h.ID, h.Name, valInt64(h.ChainID), valF64(h.Latitude), valF64(h.Longitude))
}

func (r *Repo) UpsertImage(ctx context.Context, i domain.Image) (bool, error) {
	return r.insertOne(ctx, insertImageSQL, i.ID, i.HotelID, i.URL)
}

func (r *Repo) UpsertImageTag(ctx context.Context, t domain.ImageTag) (bool, error) {
	return r.insertOne(ctx, insertImageTagSQL, t.ImageID, t.Name, t.Confidence)
}

// UpsertAvailability sends the price as a 2-decimal string so DECIMAL(10,2)
// stores exactly what was generated.
func (r *Repo) UpsertAvailability(ctx context.Context, a domain.AvailabilityPrice) (bool, error) {
	return r.insertOne(ctx, insertAvailabilitySQL,
		a.HotelID, a.Date.Format(time.DateOnly), a.Availability, strconv.FormatFloat(a.Price, 'f', 2, 64), a.Currency)
}

// ---- reads ----

func (r *Repo) ListChains(ctx context.Context) ([]domain.Chain, error) {
	rows, err := r.db.QueryContext(ctx, listChainsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Chain
	for rows.Next() {
		var c domain.Chain
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var (
		h        domain.Hotel
		chain    sql.NullInt64
		lat, lon sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, getHotelSQL, id).Scan(&h.ID, &h.Name, &chain, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ChainID, h.Latitude, h.Longitude = ptrInt64(chain), ptrF64(lat), ptrF64(lon)
	return h, nil
}

// ChainName returns domain.ErrNotFound for an unknown chain.
func (r *Repo) ChainName(ctx context.Context, chainID int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, getChainNameSQL, chainID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return name, err
}

// ListHotels returns a page of hotels with their chain name and images (no tags).
func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelView, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	var (
		out   []domain.HotelView
		ids   []any
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			hv        domain.HotelView
			chain     sql.NullInt64
			lat, lon  sql.NullFloat64
			chainName sql.NullString
		)
		if err := rows.Scan(&hv.ID, &hv.Name, &chain, &lat, &lon, &chainName); err != nil {
			rows.Close()
			return nil, err
		}
		hv.ChainID, hv.Latitude, hv.Longitude = ptrInt64(chain), ptrF64(lat), ptrF64(lon)
		if chainName.Valid {
			s := chainName.String
			hv.ChainName = &s
		}
		hv.Images = []domain.ImageView{}
		index[hv.ID] = len(out)
		ids = append(ids, hv.ID)
		out = append(out, hv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	irows, err := r.db.QueryContext(ctx, listHotelImagesPrefix+placeholders(len(ids))+listHotelImagesSuffix, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var img domain.Image
		if err := irows.Scan(&img.ID, &img.HotelID, &img.URL); err != nil {
			return nil, err
		}
		if i, ok := index[img.HotelID]; ok {
			out[i].Images = append(out[i].Images, domain.ImageView{Image: img})
		}
	}
	return out, irows.Err()
}

func (r *Repo) ListHotelIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, listHotelIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) ListImages(ctx context.Context, hotelID int64) ([]domain.Image, error) {
	return r.queryImages(ctx, listImagesSQL, hotelID)
}

func (r *Repo) ListAllImages(ctx context.Context) ([]domain.Image, error) {
	return r.queryImages(ctx, listAllImagesSQL)
}

func (r *Repo) queryImages(ctx context.Context, query string, args ...any) ([]domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Image{}
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.HotelID, &img.URL); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *Repo) ListImageTags(ctx context.Context, imageID int64) ([]domain.ImageTag, error) {
	rows, err := r.db.QueryContext(ctx, listImageTagsSQL, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.ImageTag{}
	for rows.Next() {
		var t domain.ImageTag
		if err := rows.Scan(&t.ImageID, &t.Name, &t.Confidence); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) ListAvailability(ctx context.Context, hotelID int64, from, to time.Time) ([]domain.AvailabilityPrice, error) {
	rows, err := r.db.QueryContext(ctx, listAvailabilitySQL, hotelID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.AvailabilityPrice{}
	for rows.Next() {
		var a domain.AvailabilityPrice
		if err := rows.Scan(&a.ID, &a.HotelID, &a.Date, &a.Availability, &a.Price, &a.Currency); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var (
	minSearchDate = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	maxSearchDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

const maxSearchPrice = 99999999.99 // DECIMAL(10,2) ceiling

// SearchImages finds images with a tag containing q.Tag whose hotel has prices
// in the window. Each hit carries its matching tags only. An empty tag
// matches nothing.
func (r *Repo) SearchImages(ctx context.Context, q domain.ImageSearch) ([]domain.ImageHit, error) {
	if strings.TrimSpace(q.Tag) == "" {
		return []domain.ImageHit{}, nil
	}
	pattern := "%" + escapeLike(strings.TrimSpace(q.Tag)) + "%"
	maxPrice := q.MaxPrice
	if maxPrice <= 0 {
		maxPrice = maxSearchPrice
	}
	from, to := q.From, q.To
	if from.IsZero() {
		from = minSearchDate
	}
	if to.IsZero() {
		to = maxSearchDate
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, searchImagesSQL, pattern, q.MinPrice, maxPrice,
		from.Format(time.DateOnly), to.Format(time.DateOnly), limit)
	if err != nil {
		return nil, err
	}
	out := []domain.ImageHit{}
	index := map[int64]int{}
	var ids []any
	for rows.Next() {
		var (
			h        domain.ImageHit
			lat, lon sql.NullFloat64
			avg      sql.NullFloat64
		)
		if err := rows.Scan(&h.ImageID, &h.ImageURL, &h.HotelID, &h.HotelName, &lat, &lon, &avg); err != nil {
			rows.Close()
			return nil, err
		}
		h.Latitude, h.Longitude = ptrF64(lat), ptrF64(lon)
		h.AvgPrice = avg.Float64
		h.Tags = []domain.ImageTag{}
		index[h.ImageID] = len(out)
		ids = append(ids, h.ImageID)
		out = append(out, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	args := append([]any{pattern}, ids...)
	trows, err := r.db.QueryContext(ctx, searchTagsPrefix+placeholders(len(ids))+searchTagsSuffix, args...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var t domain.ImageTag
		if err := trows.Scan(&t.ImageID, &t.Name, &t.Confidence); err != nil {
			return nil, err
		}
		if i, ok := index[t.ImageID]; ok {
			out[i].Tags = append(out[i].Tags, t)
		}
	}
	return out, trows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// escapeLike escapes LIKE wildcards with '!' (the ESCAPE char in the queries).
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
