package contact

import (
	"context"
	"time"

	"catalogsite/internal/database"
)

type Inquiry struct {
	ID        string
	Form      Form
	IP        string
	Forwarded bool
	CreatedAt time.Time
}

type Repository struct {
	DB database.DB
}

func NewRepository(db database.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, in Inquiry) error {
	query := `
		INSERT INTO contact_inquiries
		(id, locale, name, email, phone, company, message, ip, forwarded, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.DB.Exec(ctx, query,
		in.ID, in.Form.Locale, in.Form.Name, in.Form.Email, in.Form.Phone,
		in.Form.Company, in.Form.Message, in.IP, in.Forwarded, in.CreatedAt.UTC())
	return err
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]Inquiry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, locale, name, email, phone, company, message, ip, forwarded, created_at
		FROM contact_inquiries
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		var in Inquiry
		if err := rows.Scan(&in.ID, &in.Form.Locale, &in.Form.Name, &in.Form.Email, &in.Form.Phone,
			&in.Form.Company, &in.Form.Message, &in.IP, &in.Forwarded, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
