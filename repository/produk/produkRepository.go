// repository/produk/repo.go
package produk

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EviewNicks/rental-baju-sub003/model"
)

type Repo interface {
	Get(ctx context.Context, id int64) (*model.Produk, error)
	// AdjustInventory moves kembali units from the rented pool back to
	// available and writes off hilang units from both the rented pool
	// and the total. Deltas only; idempotent callers do not exist here.
	AdjustInventory(ctx context.Context, tx *sql.Tx, produkID, kembali, hilang int64) error
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Get(ctx context.Context, id int64) (*model.Produk, error) {
	const q = `
		SELECT id, kode, nama, modal_awal, harga_sewa,
			jumlah_total, jumlah_tersedia, jumlah_disewa, created_at
		FROM produk
		WHERE id = $1`
	var p model.Produk
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Kode, &p.Nama, &p.ModalAwal, &p.HargaSewa,
		&p.JumlahTotal, &p.JumlahTersedia, &p.JumlahDisewa, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) AdjustInventory(ctx context.Context, tx *sql.Tx, produkID, kembali, hilang int64) error {
	if kembali == 0 && hilang == 0 {
		return nil
	}
	// Guard: only adjust while enough units are out on rent. The row
	// lock plus the guard keeps two concurrent returns from crediting
	// the same units twice; jumlah_tersedia + jumlah_disewa ==
	// jumlah_total holds on both sides of the update.
	const q = `
		UPDATE produk
		SET jumlah_tersedia = jumlah_tersedia + $2,
			jumlah_disewa   = jumlah_disewa - $2 - $3,
			jumlah_total    = jumlah_total - $3
		WHERE id = $1
		AND jumlah_disewa >= $2 + $3`
	res, err := tx.ExecContext(ctx, q, produkID, kembali, hilang)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return errors.New("jumlah disewa tidak mencukupi")
	}
	return nil
}
