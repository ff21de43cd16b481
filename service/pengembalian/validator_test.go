package pengembalian_test

import (
	"testing"
	"time"

	"github.com/EviewNicks/rental-baju-sub003/model"
	pengembalian "github.com/EviewNicks/rental-baju-sub003/service/pengembalian"
)

func kondisi(desc string, n int64) pengembalian.KondisiInput {
	return pengembalian.KondisiInput{KondisiAkhir: desc, JumlahKembali: n}
}

func oneItem(itemID int64, ks ...pengembalian.KondisiInput) pengembalian.ReturnRequest {
	return pengembalian.ReturnRequest{
		Items: []pengembalian.ItemInput{{ItemID: itemID, Kondisi: ks}},
	}
}

func fieldCodes(err error) []string {
	var out []string
	for _, fe := range pengembalian.Fields(err) {
		out = append(out, fe.Code)
	}
	return out
}

func hasCode(err error, code string) bool {
	for _, c := range fieldCodes(err) {
		if c == code {
			return true
		}
	}
	return false
}

func TestValidate_OK(t *testing.T) {
	req := oneItem(1, kondisi("Baik, dikembalikan tepat waktu", 3))
	if err := pengembalian.Validate(req, pengembalian.ValidateOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyItems(t *testing.T) {
	err := pengembalian.Validate(pengembalian.ReturnRequest{}, pengembalian.ValidateOptions{})
	if !hasCode(err, "SCHEMA_INVALID") {
		t.Fatalf("want SCHEMA_INVALID, got %v", err)
	}
}

func TestValidate_DescriptionBounds(t *testing.T) {
	if err := pengembalian.Validate(oneItem(1, kondisi("ok", 1)), pengembalian.ValidateOptions{}); !hasCode(err, "SCHEMA_INVALID") {
		t.Fatalf("short description accepted: %v", err)
	}
	if err := pengembalian.Validate(oneItem(1, kondisi("Baik <script>", 1)), pengembalian.ValidateOptions{}); !hasCode(err, "SCHEMA_INVALID") {
		t.Fatalf("bad charset accepted: %v", err)
	}
}

func TestValidate_ReturnedNeedsQuantity(t *testing.T) {
	err := pengembalian.Validate(oneItem(1, kondisi("Baik saja", 0)), pengembalian.ValidateOptions{})
	if !hasCode(err, "INVALID_QUANTITY") {
		t.Fatalf("want INVALID_QUANTITY, got %v", err)
	}
}

func TestValidate_LostQuantityConventions(t *testing.T) {
	// unified convention: lost may carry its own count, or 0 (legacy)
	if err := pengembalian.Validate(oneItem(1, kondisi("Hilang semua", 2)), pengembalian.ValidateOptions{}); err != nil {
		t.Fatalf("unified lost count rejected: %v", err)
	}
	if err := pengembalian.Validate(oneItem(1, kondisi("Hilang semua", 0)), pengembalian.ValidateOptions{}); err != nil {
		t.Fatalf("legacy lost zero rejected: %v", err)
	}
	// strict mode: lost must be exactly 0
	err := pengembalian.Validate(oneItem(1, kondisi("Hilang semua", 2)), pengembalian.ValidateOptions{Strict: true})
	if !hasCode(err, "INVALID_QUANTITY") {
		t.Fatalf("strict mode accepted lost with quantity: %v", err)
	}
}

func TestValidate_MixedConditionsAllowed(t *testing.T) {
	req := oneItem(1, kondisi("Baik, lengkap", 3), kondisi("Hilang satu stel", 2))
	if err := pengembalian.Validate(req, pengembalian.ValidateOptions{}); err != nil {
		t.Fatalf("mixed splits rejected: %v", err)
	}
}

func TestValidate_DuplicateKondisi(t *testing.T) {
	req := oneItem(1, kondisi("Baik, lengkap", 1), kondisi("  baik, LENGKAP ", 2))
	err := pengembalian.Validate(req, pengembalian.ValidateOptions{})
	if !hasCode(err, "DUPLICATE_CONDITION") {
		t.Fatalf("want DUPLICATE_CONDITION, got %v", err)
	}
}

func TestValidate_DuplicateItems(t *testing.T) {
	req := pengembalian.ReturnRequest{Items: []pengembalian.ItemInput{
		{ItemID: 7, Kondisi: []pengembalian.KondisiInput{kondisi("Baik, lengkap", 1)}},
		{ItemID: 7, Kondisi: []pengembalian.KondisiInput{kondisi("Rusak ringan", 1)}},
	}}
	err := pengembalian.Validate(req, pengembalian.ValidateOptions{})
	if !hasCode(err, "DUPLICATE_ITEM") {
		t.Fatalf("want DUPLICATE_ITEM, got %v", err)
	}
}

func TestValidate_TglKembaliWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ok := now.AddDate(0, 0, -10)
	req := oneItem(1, kondisi("Baik, lengkap", 1))
	req.TglKembali = &ok
	if err := pengembalian.Validate(req, pengembalian.ValidateOptions{Now: now}); err != nil {
		t.Fatalf("backfilled date rejected: %v", err)
	}

	tooOld := now.AddDate(0, 0, -400)
	req.TglKembali = &tooOld
	if err := pengembalian.Validate(req, pengembalian.ValidateOptions{Now: now}); !hasCode(err, "DATE_OUT_OF_RANGE") {
		t.Fatalf("want DATE_OUT_OF_RANGE, got %v", err)
	}

	tooFar := now.AddDate(0, 0, 45)
	req.TglKembali = &tooFar
	if err := pengembalian.Validate(req, pengembalian.ValidateOptions{Now: now}); !hasCode(err, "DATE_OUT_OF_RANGE") {
		t.Fatalf("want DATE_OUT_OF_RANGE, got %v", err)
	}
}

// --- Normalize (enrichment mode) ---

func items(diambil, kembali int64) []model.TransaksiItem {
	return []model.TransaksiItem{{
		ID: 1, ProdukID: 10, ProdukNama: "Kebaya Merah",
		JumlahDiambil: diambil, JumlahKembali: kembali, ModalAwal: 100_000,
	}}
}

func TestNormalize_UnknownItem(t *testing.T) {
	_, err := pengembalian.Normalize(oneItem(99, kondisi("Baik, lengkap", 1)), items(3, 0))
	if pengembalian.Code(err) != pengembalian.ErrItemNotFound {
		t.Fatalf("want ITEM_NOT_FOUND, got %v", err)
	}
}

func TestNormalize_ExcessQuantity(t *testing.T) {
	// picked up 2, request sums to 3
	req := oneItem(1, kondisi("Baik, lengkap", 2), kondisi("Rusak ringan", 1))
	_, err := pengembalian.Normalize(req, items(2, 0))
	if pengembalian.Code(err) != pengembalian.ErrExcess {
		t.Fatalf("want EXCESS_TOTAL_QUANTITY, got %v", err)
	}
}

func TestNormalize_ExpandsLegacyLost(t *testing.T) {
	// picked up 5: 3 returned fine, lost split with 0 absorbs the rest
	req := oneItem(1, kondisi("Baik, lengkap", 3), kondisi("Hilang sisanya", 0))
	out, err := pengembalian.Normalize(req, items(5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || len(out[0].Kondisi) != 2 {
		t.Fatalf("unexpected shape: %+v", out)
	}
	lost := out[0].Kondisi[1]
	if !lost.Hilang || lost.Jumlah != 2 {
		t.Fatalf("lost split = %+v; want Hilang with quantity 2", lost)
	}
}

func TestNormalize_LegacyLostNothingLeft(t *testing.T) {
	// all 3 accounted as returned, nothing left for the lost split
	req := oneItem(1, kondisi("Baik, lengkap", 3), kondisi("Hilang sisanya", 0))
	_, err := pengembalian.Normalize(req, items(3, 0))
	if !hasCode(err, "AMBIGUOUS_LOST_QUANTITY") {
		t.Fatalf("want AMBIGUOUS_LOST_QUANTITY, got %v", err)
	}
}

func TestNormalize_AlreadySettledItem(t *testing.T) {
	req := oneItem(1, kondisi("Baik, lengkap", 1))
	_, err := pengembalian.Normalize(req, items(2, 2))
	if pengembalian.Code(err) != pengembalian.ErrExcess {
		t.Fatalf("want EXCESS_TOTAL_QUANTITY, got %v", err)
	}
}

func TestNormalize_PartialRemaining(t *testing.T) {
	// 1 of 3 already settled earlier; returning 2 more is fine
	req := oneItem(1, kondisi("Baik, lengkap", 2))
	out, err := pengembalian.Normalize(req, items(3, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Kondisi[0].Jumlah != 2 {
		t.Fatalf("quantity = %d; want 2", out[0].Kondisi[0].Jumlah)
	}
}
