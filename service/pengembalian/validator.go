package pengembalian

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/EviewNicks/rental-baju-sub003/model"
)

// request shapes consumed by the service; controllers bind their own
// DTOs and convert to these.

type KondisiInput struct {
	KondisiAkhir  string
	JumlahKembali int64
	ModalAwal     *int64 // optional explicit cost-basis override
}

type ItemInput struct {
	ItemID  int64
	Kondisi []KondisiInput
}

type ReturnRequest struct {
	Items      []ItemInput
	Catatan    string
	TglKembali *time.Time
}

const (
	maxItemsPerRequest  = 50
	maxKondisiPerItem   = 10
	minKondisiLen       = 5
	maxKondisiLen       = 500
	maxJumlahPerKondisi = 999
	maxBackdateDays     = 365
	maxFuturedateDays   = 30
)

// ValidateOptions selects the lost-quantity convention. Strict is the
// legacy convention: a lost split must carry jumlahKembali == 0 and the
// forfeited count is resolved during enrichment. The default (unified)
// convention lets a lost split carry its own positive quantity.
type ValidateOptions struct {
	Strict bool
	Now    time.Time // zero means time.Now()
}

// Validate runs the fixed pipeline over the payload: shape first, then
// the business predicates, in a deterministic order. It never mutates
// the request and returns all violations at once.
func Validate(req ReturnRequest, opts ValidateOptions) error {
	var errs ValidationErrors
	errs = append(errs, checkShape(req)...)
	if len(errs) > 0 {
		// business predicates assume a well-formed shape
		return errs
	}
	errs = append(errs, checkKondisiQuantities(req, opts.Strict)...)
	errs = append(errs, checkDistinctKondisi(req)...)
	errs = append(errs, checkDuplicateItems(req)...)
	errs = append(errs, checkTglKembali(req, opts.Now)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkShape covers counts, lengths, character set and quantity bounds.
func checkShape(req ReturnRequest) ValidationErrors {
	var errs ValidationErrors
	if len(req.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Code: "SCHEMA_INVALID", Message: "daftar item tidak boleh kosong"})
		return errs
	}
	if len(req.Items) > maxItemsPerRequest {
		errs = append(errs, FieldError{Field: "items", Code: "SCHEMA_INVALID",
			Message: fmt.Sprintf("maksimal %d item per permintaan", maxItemsPerRequest)})
		return errs
	}
	for i, it := range req.Items {
		if it.ItemID <= 0 {
			errs = append(errs, FieldError{Field: field(i, -1, "itemId"), Code: "SCHEMA_INVALID", Message: "itemId wajib diisi"})
		}
		if len(it.Kondisi) == 0 {
			errs = append(errs, FieldError{Field: field(i, -1, "conditions"), Code: "SCHEMA_INVALID", Message: "kondisi tidak boleh kosong"})
			continue
		}
		if len(it.Kondisi) > maxKondisiPerItem {
			errs = append(errs, FieldError{Field: field(i, -1, "conditions"), Code: "SCHEMA_INVALID",
				Message: fmt.Sprintf("maksimal %d kondisi per item", maxKondisiPerItem)})
			continue
		}
		for j, k := range it.Kondisi {
			desc := strings.TrimSpace(k.KondisiAkhir)
			if len(desc) < minKondisiLen || len(desc) > maxKondisiLen {
				errs = append(errs, FieldError{Field: field(i, j, "kondisiAkhir"), Code: "SCHEMA_INVALID",
					Message: fmt.Sprintf("deskripsi kondisi harus %d-%d karakter", minKondisiLen, maxKondisiLen)})
			} else if !kondisiCharsetOK(desc) {
				errs = append(errs, FieldError{Field: field(i, j, "kondisiAkhir"), Code: "SCHEMA_INVALID",
					Message: "deskripsi kondisi mengandung karakter tidak valid"})
			}
			if k.JumlahKembali < 0 || k.JumlahKembali > maxJumlahPerKondisi {
				errs = append(errs, FieldError{Field: field(i, j, "jumlahKembali"), Code: "SCHEMA_INVALID",
					Message: fmt.Sprintf("jumlah harus 0-%d", maxJumlahPerKondisi)})
			}
			if k.ModalAwal != nil && *k.ModalAwal < 0 {
				errs = append(errs, FieldError{Field: field(i, j, "modalAwal"), Code: "SCHEMA_INVALID",
					Message: "modalAwal tidak boleh negatif"})
			}
		}
	}
	return errs
}

// checkKondisiQuantities enforces the classifier verdict per split:
// a returned split needs at least one unit; a lost split must be 0 in
// strict mode, and may carry the forfeited count otherwise.
func checkKondisiQuantities(req ReturnRequest, strict bool) ValidationErrors {
	var errs ValidationErrors
	for i, it := range req.Items {
		for j, k := range it.Kondisi {
			lost := IsLost(k.KondisiAkhir)
			switch {
			case !lost && k.JumlahKembali < 1:
				errs = append(errs, FieldError{Field: field(i, j, "jumlahKembali"), Code: "INVALID_QUANTITY",
					Message: "kondisi dikembalikan harus berjumlah minimal 1",
					Saran:   "tandai kondisi sebagai hilang jika barang tidak kembali"})
			case lost && strict && k.JumlahKembali != 0:
				errs = append(errs, FieldError{Field: field(i, j, "jumlahKembali"), Code: "INVALID_QUANTITY",
					Message: "kondisi hilang harus berjumlah 0"})
			}
		}
	}
	return errs
}

// checkDistinctKondisi rejects two splits of one item with the same
// description (case-insensitive, trimmed).
func checkDistinctKondisi(req ReturnRequest) ValidationErrors {
	var errs ValidationErrors
	for i, it := range req.Items {
		seen := make(map[string]bool, len(it.Kondisi))
		for j, k := range it.Kondisi {
			key := strings.ToLower(strings.TrimSpace(k.KondisiAkhir))
			if seen[key] {
				errs = append(errs, FieldError{Field: field(i, j, "kondisiAkhir"), Code: "DUPLICATE_CONDITION",
					Message: "deskripsi kondisi duplikat dalam satu item",
					Saran:   "gabungkan jumlah ke dalam satu kondisi"})
			}
			seen[key] = true
		}
	}
	return errs
}

func checkDuplicateItems(req ReturnRequest) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[int64]bool, len(req.Items))
	for i, it := range req.Items {
		if seen[it.ItemID] {
			errs = append(errs, FieldError{Field: field(i, -1, "itemId"), Code: "DUPLICATE_ITEM",
				Message: fmt.Sprintf("item %d muncul lebih dari sekali", it.ItemID)})
		}
		seen[it.ItemID] = true
	}
	return errs
}

// checkTglKembali bounds the optional return date: up to a year back
// (late returns being backfilled) and 30 days forward (scheduled).
func checkTglKembali(req ReturnRequest, now time.Time) ValidationErrors {
	if req.TglKembali == nil {
		return nil
	}
	if now.IsZero() {
		now = time.Now()
	}
	t := *req.TglKembali
	if t.Before(now.AddDate(0, 0, -maxBackdateDays)) || t.After(now.AddDate(0, 0, maxFuturedateDays)) {
		return ValidationErrors{{Field: "tglKembali", Code: "DATE_OUT_OF_RANGE",
			Message: fmt.Sprintf("tanggal kembali harus antara %d hari ke belakang dan %d hari ke depan", maxBackdateDays, maxFuturedateDays)}}
	}
	return nil
}

func kondisiCharsetOK(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case ',', '.', '(', ')', '-', '/', ':', '%':
			continue
		}
		return false
	}
	return true
}

func field(item, kondisi int, name string) string {
	if kondisi < 0 {
		return fmt.Sprintf("items[%d].%s", item, name)
	}
	return fmt.Sprintf("items[%d].conditions[%d].%s", item, kondisi, name)
}

// normalized representation used by the processor: every split carries
// a positive quantity, lost splits included.

type NormalizedKondisi struct {
	Kondisi   string
	Jumlah    int64
	Hilang    bool
	ModalAwal *int64
}

type NormalizedItem struct {
	Item    model.TransaksiItem
	Kondisi []NormalizedKondisi
}

// Normalize matches the request against the authoritative transaction
// items (enrichment mode). It resolves item references, expands legacy
// lost splits with quantity 0 to the item's remaining unsettled
// quantity, and enforces the per-item quantity bound. The input request
// must already have passed Validate.
func Normalize(req ReturnRequest, items []model.TransaksiItem) ([]NormalizedItem, error) {
	byID := make(map[int64]model.TransaksiItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var errs ValidationErrors
	out := make([]NormalizedItem, 0, len(req.Items))
	for i, in := range req.Items {
		item, ok := byID[in.ItemID]
		if !ok {
			return nil, makeErrf(ErrItemNotFound, "item %d tidak ada pada transaksi", in.ItemID)
		}
		remaining := item.JumlahDiambil - item.JumlahKembali
		if remaining <= 0 {
			errs = append(errs, FieldError{Field: field(i, -1, "itemId"), Code: string(ErrExcess),
				Message: fmt.Sprintf("item %d sudah diselesaikan seluruhnya", in.ItemID),
				Saran:   "hapus item ini dari permintaan"})
			continue
		}

		ni := NormalizedItem{Item: item}
		var explicit int64
		implicit := -1
		for j, k := range in.Kondisi {
			nk := NormalizedKondisi{
				Kondisi:   strings.TrimSpace(k.KondisiAkhir),
				Jumlah:    k.JumlahKembali,
				Hilang:    IsLost(k.KondisiAkhir),
				ModalAwal: k.ModalAwal,
			}
			if nk.Hilang && nk.Jumlah == 0 {
				if implicit >= 0 {
					errs = append(errs, FieldError{Field: field(i, j, "jumlahKembali"), Code: "AMBIGUOUS_LOST_QUANTITY",
						Message: "hanya satu kondisi hilang tanpa jumlah yang diizinkan per item",
						Saran:   "isi jumlah unit yang hilang pada setiap kondisi"})
				}
				implicit = len(ni.Kondisi)
			} else {
				explicit += nk.Jumlah
			}
			ni.Kondisi = append(ni.Kondisi, nk)
		}
		sum := explicit
		if implicit >= 0 {
			// legacy shape: the lost split forfeits whatever the other
			// splits of this request leave unaccounted
			forfeited := remaining - explicit
			if forfeited < 1 {
				errs = append(errs, FieldError{Field: field(i, -1, "conditions"), Code: "AMBIGUOUS_LOST_QUANTITY",
					Message: fmt.Sprintf("tidak ada sisa unit untuk kondisi hilang pada item %d", in.ItemID),
					Saran:   "perbaiki pembagian jumlah agar menyisakan unit yang hilang"})
				continue
			}
			ni.Kondisi[implicit].Jumlah = forfeited
			sum += forfeited
		}
		if sum > remaining {
			errs = append(errs, FieldError{Field: field(i, -1, "conditions"), Code: string(ErrExcess),
				Message: fmt.Sprintf("total %d melebihi sisa %d yang dapat dikembalikan untuk item %d", sum, remaining, in.ItemID),
				Saran:   "tandai sebagian sebagai hilang atau perbaiki pembagian jumlah"})
			continue
		}
		out = append(out, ni)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
