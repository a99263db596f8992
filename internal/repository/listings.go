package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelqm/imovia/internal/llm"
)

// Listing is the persisted form of one property record plus its gallery of
// data URI payloads. Gallery position 0 is the cover.
type Listing struct {
	ID          string
	Title       string
	Type        string
	Price       float64
	Address     string
	Area        float64
	Bedrooms    int
	Bathrooms   int
	Description string
	Status      string
	Gallery     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewListing builds a record from already-sanitized fields.
func NewListing(fields llm.ListingFields, gallery []string) Listing {
	if gallery == nil {
		gallery = []string{}
	}
	return Listing{
		ID:          uuid.New().String(),
		Title:       fields.Title,
		Type:        fields.Type,
		Price:       fields.Price,
		Address:     fields.Address,
		Area:        fields.Area,
		Bedrooms:    fields.Bedrooms,
		Bathrooms:   fields.Bathrooms,
		Description: fields.Description,
		Status:      fields.Status,
		Gallery:     gallery,
	}
}

var ErrNotFound = errors.New("not found")

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Save upserts the listing by ID and stamps timestamps.
func (r *ListingRepository) Save(ctx context.Context, l Listing) (Listing, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Gallery == nil {
		l.Gallery = []string{}
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	galleryJSON, err := json.Marshal(l.Gallery)
	if err != nil {
		return Listing{}, fmt.Errorf("marshal gallery: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO listings
			(id, title, type, price, address, area, bedrooms, bathrooms, description, status, gallery, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			price = excluded.price,
			address = excluded.address,
			area = excluded.area,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			description = excluded.description,
			status = excluded.status,
			gallery = excluded.gallery,
			updated_at = excluded.updated_at`,
		l.ID, l.Title, l.Type, l.Price, l.Address, l.Area, l.Bedrooms, l.Bathrooms,
		l.Description, l.Status, string(galleryJSON), l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return Listing{}, fmt.Errorf("save listing %s: %w", l.ID, err)
	}
	return l, nil
}

// Get fetches one listing by ID; ErrNotFound when absent.
func (r *ListingRepository) Get(ctx context.Context, id string) (Listing, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, type, price, address, area, bedrooms, bathrooms, description, status, gallery, created_at, updated_at
		FROM listings WHERE id = ?`, id)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Listing{}, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	return l, nil
}

// List returns every listing, newest first.
func (r *ListingRepository) List(ctx context.Context) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, type, price, address, area, bedrooms, bathrooms, description, status, gallery, created_at, updated_at
		FROM listings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (Listing, error) {
	var l Listing
	var galleryJSON string
	err := row.Scan(&l.ID, &l.Title, &l.Type, &l.Price, &l.Address, &l.Area,
		&l.Bedrooms, &l.Bathrooms, &l.Description, &l.Status, &galleryJSON,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Listing{}, err
	}
	if err := json.Unmarshal([]byte(galleryJSON), &l.Gallery); err != nil {
		return Listing{}, fmt.Errorf("decode gallery: %w", err)
	}
	return l, nil
}
