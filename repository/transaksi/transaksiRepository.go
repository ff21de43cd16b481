// repository/transaksi/repo.go
package transaksi

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EviewNicks/rental-baju-sub003/model"
)

// ItemReturnUpdate carries the per-item aggregate changes of one return
// call. AddJumlah and AddDenda are deltas, never absolute values, so
// partial multi-call returns stay additive.
type ItemReturnUpdate struct {
	ItemID       int64
	AddJumlah    int64
	AddDenda     int64
	KondisiAkhir string
	MultiKondisi bool
	Status       model.ItemReturnStatus
}

// ReturnFinalize carries the transaction-level changes of one return
// call. TglKembali is only set when the call completes the transaction.
type ReturnFinalize struct {
	TransaksiID int64
	Status      model.TransaksiStatus
	AddDenda    int64
	TglKembali  *time.Time
	Catatan     *string
}

type Repo interface {
	GetWithItems(ctx context.Context, id int64) (*model.Transaksi, error)
	LockTransaksi(ctx context.Context, tx *sql.Tx, id int64) (*model.Transaksi, error)
	ListItemsForUpdate(ctx context.Context, tx *sql.Tx, transaksiID int64) ([]model.TransaksiItem, error)
	ListKondisi(ctx context.Context, itemID int64) ([]model.KondisiKembali, error)
	InsertKondisi(ctx context.Context, tx *sql.Tx, k *model.KondisiKembali) error
	UpdateItemReturn(ctx context.Context, tx *sql.Tx, upd ItemReturnUpdate) error
	FinishTransaksi(ctx context.Context, tx *sql.Tx, upd ReturnFinalize) error
	InsertAktivitas(ctx context.Context, tx *sql.Tx, a *model.Aktivitas) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) GetWithItems(ctx context.Context, id int64) (*model.Transaksi, error) {
	const q = `
		SELECT t.id, t.kode, t.penyewa_id, t.status,
			t.total_harga, t.total_bayar, t.total_denda, t.sisa_bayar,
			t.tgl_mulai, t.tgl_selesai, t.tgl_kembali, t.catatan,
			t.created_by, t.created_at, t.updated_at
		FROM transaksi t
		WHERE t.id = $1`
	var t model.Transaksi
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Kode, &t.PenyewaID, &t.Status,
		&t.TotalHarga, &t.TotalBayar, &t.TotalDenda, &t.SisaBayar,
		&t.TglMulai, &t.TglSelesai, &t.TglKembali, &t.Catatan,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, r.db.QueryContext, id, false)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *repo) LockTransaksi(ctx context.Context, tx *sql.Tx, id int64) (*model.Transaksi, error) {
	const q = `
		SELECT id, kode, penyewa_id, status,
			total_harga, total_bayar, total_denda, sisa_bayar,
			tgl_mulai, tgl_selesai, tgl_kembali, catatan,
			created_by, created_at, updated_at
		FROM transaksi
		WHERE id = $1
		FOR UPDATE`
	var t model.Transaksi
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Kode, &t.PenyewaID, &t.Status,
		&t.TotalHarga, &t.TotalBayar, &t.TotalDenda, &t.SisaBayar,
		&t.TglMulai, &t.TglSelesai, &t.TglKembali, &t.Catatan,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type queryFn func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *repo) ListItemsForUpdate(ctx context.Context, tx *sql.Tx, transaksiID int64) ([]model.TransaksiItem, error) {
	return r.listItems(ctx, tx.QueryContext, transaksiID, true)
}

func (r *repo) listItems(ctx context.Context, query queryFn, transaksiID int64, forUpdate bool) ([]model.TransaksiItem, error) {
	q := `
		SELECT i.id, i.transaksi_id, i.produk_id, p.nama, p.modal_awal,
			i.jumlah, i.jumlah_diambil, i.jumlah_kembali,
			i.harga_sewa, i.durasi, i.subtotal,
			i.kondisi_awal, i.kondisi_akhir, i.status_kembali,
			i.multi_kondisi, i.total_denda
		FROM transaksi_item i
		JOIN produk p ON p.id = i.produk_id
		WHERE i.transaksi_id = $1
		ORDER BY i.id`
	if forUpdate {
		q += `
		FOR UPDATE OF i`
	}
	rows, err := query(ctx, q, transaksiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TransaksiItem
	for rows.Next() {
		var it model.TransaksiItem
		if err := rows.Scan(
			&it.ID, &it.TransaksiID, &it.ProdukID, &it.ProdukNama, &it.ModalAwal,
			&it.Jumlah, &it.JumlahDiambil, &it.JumlahKembali,
			&it.HargaSewa, &it.Durasi, &it.Subtotal,
			&it.KondisiAwal, &it.KondisiAkhir, &it.StatusKembali,
			&it.MultiKondisi, &it.TotalDenda,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) ListKondisi(ctx context.Context, itemID int64) ([]model.KondisiKembali, error) {
	const q = `
		SELECT id, item_id, kondisi, jumlah, hilang, denda, modal_awal, created_by, created_at
		FROM kondisi_kembali
		WHERE item_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.KondisiKembali
	for rows.Next() {
		var k model.KondisiKembali
		if err := rows.Scan(&k.ID, &k.ItemID, &k.Kondisi, &k.Jumlah, &k.Hilang,
			&k.Denda, &k.ModalAwal, &k.CreatedBy, &k.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *repo) InsertKondisi(ctx context.Context, tx *sql.Tx, k *model.KondisiKembali) error {
	const q = `
		INSERT INTO kondisi_kembali (item_id, kondisi, jumlah, hilang, denda, modal_awal, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		k.ItemID, k.Kondisi, k.Jumlah, k.Hilang, k.Denda, k.ModalAwal, k.CreatedBy,
	).Scan(&k.ID, &k.CreatedAt)
}

func (r *repo) UpdateItemReturn(ctx context.Context, tx *sql.Tx, upd ItemReturnUpdate) error {
	// Guard: never push jumlah_kembali past jumlah_diambil, even if a
	// concurrent call slipped past the service-level check.
	const q = `
		UPDATE transaksi_item
		SET jumlah_kembali = jumlah_kembali + $2,
			total_denda    = total_denda + $3,
			kondisi_akhir  = $4,
			multi_kondisi  = $5,
			status_kembali = $6
		WHERE id = $1
		AND jumlah_kembali + $2 <= jumlah_diambil`
	res, err := tx.ExecContext(ctx, q,
		upd.ItemID, upd.AddJumlah, upd.AddDenda,
		upd.KondisiAkhir, upd.MultiKondisi, upd.Status,
	)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return errors.New("jumlah kembali melebihi jumlah diambil")
	}
	return nil
}

func (r *repo) FinishTransaksi(ctx context.Context, tx *sql.Tx, upd ReturnFinalize) error {
	const q = `
		UPDATE transaksi
		SET status      = $2,
			total_denda = total_denda + $3,
			sisa_bayar  = total_harga + total_denda + $3 - total_bayar,
			tgl_kembali = COALESCE($4, tgl_kembali),
			catatan     = COALESCE($5, catatan),
			updated_at  = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q,
		upd.TransaksiID, upd.Status, upd.AddDenda, upd.TglKembali, upd.Catatan,
	)
	return err
}

func (r *repo) InsertAktivitas(ctx context.Context, tx *sql.Tx, a *model.Aktivitas) error {
	const q = `
		INSERT INTO aktivitas (id, transaksi_id, tipe, deskripsi, data, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.ExecContext(ctx, q,
		a.ID, a.TransaksiID, a.Tipe, a.Deskripsi, a.Data, a.CreatedBy,
	)
	return err
}

// MarkOverdue appends at most one TERLAMBAT activity per transaction
// per day for open transactions past their expected return date.
// Overdue stays derived from dates; the status column never changes.
func (r *repo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	const q = `
		INSERT INTO aktivitas (id, transaksi_id, tipe, deskripsi, created_by)
		SELECT gen_random_uuid(), t.id, 'TERLAMBAT',
			'transaksi ' || t.kode || ' melewati tanggal kembali', 0
		FROM transaksi t
		WHERE t.status IN ('ACTIVE', 'PARTIAL')
		AND t.tgl_selesai < $1
		AND NOT EXISTS (
			SELECT 1 FROM aktivitas a
			WHERE a.transaksi_id = t.id
			AND a.tipe = 'TERLAMBAT'
			AND a.created_at::date = $1::date
		)`
	res, err := r.db.ExecContext(ctx, q, asOf)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
