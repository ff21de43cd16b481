package transaksi_test

import (
	"context"
	"testing"
	"time"

	"github.com/EviewNicks/rental-baju-sub003/model"
	transaksirepo "github.com/EviewNicks/rental-baju-sub003/repository/transaksi"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trxRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "kode", "penyewa_id", "status",
		"total_harga", "total_bayar", "total_denda", "sisa_bayar",
		"tgl_mulai", "tgl_selesai", "tgl_kembali", "catatan",
		"created_by", "created_at", "updated_at"}).
		AddRow(1, "TRX-001", 5, "ACTIVE", 300000, 300000, 0, 0,
			now.AddDate(0, 0, -7), now, nil, nil, 9, now, now)
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "transaksi_id", "produk_id", "nama", "modal_awal",
		"jumlah", "jumlah_diambil", "jumlah_kembali",
		"harga_sewa", "durasi", "subtotal",
		"kondisi_awal", "kondisi_akhir", "status_kembali",
		"multi_kondisi", "total_denda"}).
		AddRow(7, 1, 10, "Kebaya Merah", 100000, 3, 3, 0,
			25000, 3, 75000, "Baik", nil, "PENDING", false, 0)
}

func TestGetWithItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := transaksirepo.New(db)

	mock.ExpectQuery("SELECT (.+) FROM transaksi t").
		WithArgs(int64(1)).
		WillReturnRows(trxRows())
	mock.ExpectQuery("SELECT (.+) FROM transaksi_item i").
		WithArgs(int64(1)).
		WillReturnRows(itemRows())

	out, err := repo.GetWithItems(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "TRX-001", out.Kode)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(100000), out.Items[0].ModalAwal)
	assert.Equal(t, "Kebaya Merah", out.Items[0].ProdukNama)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTransaksi_ForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := transaksirepo.New(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM transaksi\\s+WHERE id = \\$1\\s+FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(trxRows())
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	out, err := repo.LockTransaksi(context.Background(), tx, 1)
	assert.NoError(t, err)
	assert.Equal(t, model.TransaksiActive, out.Status)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertKondisi(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := transaksirepo.New(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO kondisi_kembali").
		WithArgs(int64(7), "Hilang sebagian", int64(2), true, int64(200000), int64(100000), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(33, time.Now()))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	k := &model.KondisiKembali{
		ItemID: 7, Kondisi: "Hilang sebagian", Jumlah: 2, Hilang: true,
		Denda: 200000, ModalAwal: 100000, CreatedBy: 9,
	}
	assert.NoError(t, repo.InsertKondisi(context.Background(), tx, k))
	assert.Equal(t, int64(33), k.ID)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemReturn_Guard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := transaksirepo.New(db)

	t.Run("WithinBound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transaksi_item").
			WithArgs(int64(7), int64(2), int64(0), "2x Baik, lengkap", false, "PARTIAL").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.UpdateItemReturn(context.Background(), tx, transaksirepo.ItemReturnUpdate{
			ItemID: 7, AddJumlah: 2, KondisiAkhir: "2x Baik, lengkap", Status: model.ItemPartial,
		})
		assert.NoError(t, err)
		assert.NoError(t, tx.Commit())
	})

	t.Run("ExceedsPickedUp", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE transaksi_item").
			WithArgs(int64(7), int64(9), int64(0), "9x Baik, lengkap", false, "PARTIAL").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		err = repo.UpdateItemReturn(context.Background(), tx, transaksirepo.ItemReturnUpdate{
			ItemID: 7, AddJumlah: 9, KondisiAkhir: "9x Baik, lengkap", Status: model.ItemPartial,
		})
		assert.Error(t, err)
		assert.NoError(t, tx.Rollback())
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := transaksirepo.New(db)

	asOf := time.Now().UTC()
	mock.ExpectExec("INSERT INTO aktivitas").
		WithArgs(asOf).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkOverdue(context.Background(), asOf)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
