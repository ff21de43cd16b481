// model/produk.go
package model

import "time"

// Produk is one rentable clothing product. Inventory is partitioned into
// jumlah_tersedia + jumlah_disewa == jumlah_total; lost units are written
// off from both jumlah_disewa and jumlah_total.
type Produk struct {
	ID             int64     `json:"id"`
	Kode           string    `json:"kode"`
	Nama           string    `json:"nama"`
	ModalAwal      int64     `json:"modal_awal"` // cost basis, rupiah
	HargaSewa      int64     `json:"harga_sewa"`
	JumlahTotal    int64     `json:"jumlah_total"`
	JumlahTersedia int64     `json:"jumlah_tersedia"`
	JumlahDisewa   int64     `json:"jumlah_disewa"`
	CreatedAt      time.Time `json:"created_at"`
}
