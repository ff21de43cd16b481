// model/transaksi.go
package model

import (
	"encoding/json"
	"time"
)

type TransaksiStatus string

const (
	TransaksiActive    TransaksiStatus = "ACTIVE"
	TransaksiPartial   TransaksiStatus = "PARTIAL"
	TransaksiReturned  TransaksiStatus = "RETURNED"
	TransaksiCancelled TransaksiStatus = "CANCELLED"
)

type ItemReturnStatus string

const (
	ItemPending  ItemReturnStatus = "PENDING"
	ItemPartial  ItemReturnStatus = "PARTIAL"
	ItemReturned ItemReturnStatus = "RETURNED"
)

// Transaksi is one rental agreement. Soft lifecycle via Status, never deleted.
type Transaksi struct {
	ID           int64           `json:"id"`
	Kode         string          `json:"kode"`
	PenyewaID    int64           `json:"penyewa_id"`
	Status       TransaksiStatus `json:"status"`
	TotalHarga   int64           `json:"total_harga"`
	TotalBayar   int64           `json:"total_bayar"`
	TotalDenda   int64           `json:"total_denda"`
	SisaBayar    int64           `json:"sisa_bayar"`
	TglMulai     time.Time       `json:"tgl_mulai"`
	TglSelesai   time.Time       `json:"tgl_selesai"` // expected return date
	TglKembali   *time.Time      `json:"tgl_kembali,omitempty"`
	Catatan      *string         `json:"catatan,omitempty"`
	CreatedBy    int64           `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []TransaksiItem `json:"items,omitempty"`
}

// TransaksiItem is one rented line within a transaction.
type TransaksiItem struct {
	ID             int64            `json:"id"`
	TransaksiID    int64            `json:"transaksi_id"`
	ProdukID       int64            `json:"produk_id"`
	ProdukNama     string           `json:"produk_nama"`
	ModalAwal      int64            `json:"modal_awal"` // joined from produk at read time
	Jumlah         int64            `json:"jumlah"`        // quantity rented
	JumlahDiambil  int64            `json:"jumlah_diambil"` // quantity actually picked up
	JumlahKembali  int64            `json:"jumlah_kembali"` // settled so far, across all splits
	HargaSewa      int64            `json:"harga_sewa"`
	Durasi         int64            `json:"durasi"` // days
	Subtotal       int64            `json:"subtotal"`
	KondisiAwal    string           `json:"kondisi_awal"`
	KondisiAkhir   *string          `json:"kondisi_akhir,omitempty"` // summary when multi-condition
	StatusKembali  ItemReturnStatus `json:"status_kembali"`
	MultiKondisi   bool             `json:"multi_kondisi"`
	TotalDenda     int64            `json:"total_denda"`
	Kondisi        []KondisiKembali `json:"kondisi,omitempty"`
}

// KondisiKembali is one condition bucket within an item's return.
// ModalAwal is captured at computation time and never recomputed.
type KondisiKembali struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	Kondisi     string    `json:"kondisi"`
	Jumlah      int64     `json:"jumlah"`
	Hilang      bool      `json:"hilang"`
	Denda       int64     `json:"denda"`
	ModalAwal   int64     `json:"modal_awal"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pembayaran is append-only; this core only reads aggregates.
type Pembayaran struct {
	ID          int64     `json:"id"`
	TransaksiID int64     `json:"transaksi_id"`
	Jumlah      int64     `json:"jumlah"`
	Metode      string    `json:"metode"`
	CreatedAt   time.Time `json:"created_at"`
}

type AktivitasTipe string

const (
	AktivitasPengembalian AktivitasTipe = "PENGEMBALIAN"
	AktivitasTerlambat    AktivitasTipe = "TERLAMBAT"
)

// Aktivitas is one append-only audit entry, written inside the same
// database transaction as the mutation it describes.
type Aktivitas struct {
	ID          string          `json:"id"` // uuid
	TransaksiID int64           `json:"transaksi_id"`
	Tipe        AktivitasTipe   `json:"tipe"`
	Deskripsi   string          `json:"deskripsi"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}
