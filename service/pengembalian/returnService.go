package pengembalian

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/EviewNicks/rental-baju-sub003/model"
	notifikasirepo "github.com/EviewNicks/rental-baju-sub003/repository/notifikasi"
	trepo "github.com/EviewNicks/rental-baju-sub003/repository/transaksi"

	"github.com/google/uuid"
)

// repository shapes
type ItemReturnUpdate = trepo.ItemReturnUpdate
type ReturnFinalize = trepo.ReturnFinalize
type StrukPengembalian = notifikasirepo.StrukPengembalian

type Repo interface {
	GetWithItems(ctx context.Context, id int64) (*model.Transaksi, error)
	LockTransaksi(ctx context.Context, tx *sql.Tx, id int64) (*model.Transaksi, error)
	ListItemsForUpdate(ctx context.Context, tx *sql.Tx, transaksiID int64) ([]model.TransaksiItem, error)
	InsertKondisi(ctx context.Context, tx *sql.Tx, k *model.KondisiKembali) error
	UpdateItemReturn(ctx context.Context, tx *sql.Tx, upd ItemReturnUpdate) error
	FinishTransaksi(ctx context.Context, tx *sql.Tx, upd ReturnFinalize) error
	InsertAktivitas(ctx context.Context, tx *sql.Tx, a *model.Aktivitas) error
}

type ProdukRepo interface {
	AdjustInventory(ctx context.Context, tx *sql.Tx, produkID, kembali, hilang int64) error
}

type Notifier interface {
	KirimStruk(ctx context.Context, s StrukPengembalian) error
}

// dto

type ItemEligibility struct {
	ItemID        int64  `json:"item_id"`
	ProdukID      int64  `json:"produk_id"`
	ProdukNama    string `json:"produk_nama"`
	JumlahDiambil int64  `json:"jumlah_diambil"`
	JumlahKembali int64  `json:"jumlah_kembali"`
	SisaKembali   int64  `json:"sisa_kembali"`
}

type Eligibility struct {
	TransaksiID int64                 `json:"transaksi_id"`
	Eligible    bool                  `json:"eligible"`
	Reason      string                `json:"reason,omitempty"`
	Status      model.TransaksiStatus `json:"status"`
	Items       []ItemEligibility     `json:"items"`
}

type ProcessedItem struct {
	ItemID  int64                  `json:"item_id"`
	Status  model.ItemReturnStatus `json:"status"`
	Kondisi []model.KondisiKembali `json:"kondisi"`
}

type ReturnResult struct {
	TransaksiID    int64            `json:"transaksi_id"`
	TotalDenda     int64            `json:"total_denda"`
	ProcessedItems []ProcessedItem  `json:"processed_items"`
	Transaksi      *model.Transaksi `json:"transaksi"`
	Breakdown      PenaltyBreakdown `json:"breakdown"`
}

type Service interface {
	// Detail: read-only transaction snapshot with items.
	Detail(ctx context.Context, transaksiID int64) (*model.Transaksi, error)

	// CheckEligibility: read-only, never mutates; lets callers fail
	// fast before assembling the full payload.
	CheckEligibility(ctx context.Context, transaksiID int64) (*Eligibility, error)

	// ProcessReturn: the whole settlement as one atomic unit.
	ProcessReturn(ctx context.Context, actorID, transaksiID int64, req ReturnRequest) (*ReturnResult, error)
}

// ----- Service implementation -----

type service struct {
	db     *sql.DB
	r      Repo
	p      ProdukRepo
	n      Notifier
	policy PenaltyPolicy
	now    func() time.Time
}

func New(db *sql.DB, r Repo, p ProdukRepo, n Notifier, policy PenaltyPolicy) Service {
	return &service{db: db, r: r, p: p, n: n, policy: policy, now: time.Now}
}

func (s *service) Detail(ctx context.Context, transaksiID int64) (*model.Transaksi, error) {
	t, err := s.r.GetWithItems(ctx, transaksiID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return t, nil
}

func (s *service) CheckEligibility(ctx context.Context, transaksiID int64) (*Eligibility, error) {
	t, err := s.r.GetWithItems(ctx, transaksiID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return eligibilityOf(t), nil
}

// eligibilityOf is the single source of the "can this transaction take
// a return" rule, shared by the pre-check and the in-transaction
// re-check.
func eligibilityOf(t *model.Transaksi) *Eligibility {
	e := &Eligibility{TransaksiID: t.ID, Status: t.Status}
	for _, it := range t.Items {
		e.Items = append(e.Items, ItemEligibility{
			ItemID:        it.ID,
			ProdukID:      it.ProdukID,
			ProdukNama:    it.ProdukNama,
			JumlahDiambil: it.JumlahDiambil,
			JumlahKembali: it.JumlahKembali,
			SisaKembali:   it.JumlahDiambil - it.JumlahKembali,
		})
	}

	switch t.Status {
	case model.TransaksiCancelled:
		e.Reason = "transaksi sudah dibatalkan"
		return e
	case model.TransaksiReturned:
		e.Reason = "transaksi sudah dikembalikan seluruhnya"
		return e
	}

	var sisa int64
	for _, it := range e.Items {
		sisa += it.SisaKembali
	}
	if sisa <= 0 {
		e.Reason = "tidak ada item yang tersisa untuk dikembalikan"
		return e
	}

	e.Eligible = true
	return e
}

func (s *service) ProcessReturn(ctx context.Context, actorID, transaksiID int64, req ReturnRequest) (_ *ReturnResult, err error) {
	// fail fast before touching anything: eligibility, payload shape,
	// business rules, quantity bounds against the current snapshot
	t, err := s.r.GetWithItems(ctx, transaksiID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if e := eligibilityOf(t); !e.Eligible {
		return nil, makeErrf(ErrNotEligible, "%s", e.Reason)
	}
	if err = Validate(req, ValidateOptions{Now: s.now()}); err != nil {
		return nil, err
	}
	if _, err = Normalize(req, t.Items); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// re-check under the row locks; eligibility may have flipped since
	// the read above
	locked, err := s.r.LockTransaksi(ctx, tx, transaksiID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	items, err := s.r.ListItemsForUpdate(ctx, tx, transaksiID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	locked.Items = items
	if e := eligibilityOf(locked); !e.Eligible {
		return nil, makeErrf(ErrNotEligible, "%s", e.Reason)
	}
	normalized, err := Normalize(req, items)
	if err != nil {
		return nil, err
	}

	tglKembali := s.now()
	if req.TglKembali != nil {
		tglKembali = *req.TglKembali
	}
	late := LateDays(locked.TglSelesai, tglKembali)

	settled := make(map[int64]int64, len(normalized)) // itemID -> qty added now
	penalties := make([]ItemPenalty, 0, len(normalized))
	processed := make([]ProcessedItem, 0, len(normalized))

	for _, ni := range normalized {
		ip := ComputeItemPenalty(ni, late, s.policy)
		penalties = append(penalties, ip)

		pi := ProcessedItem{ItemID: ni.Item.ID}
		var addQty, kembaliQty, hilangQty int64
		for idx, nk := range ni.Kondisi {
			row := &model.KondisiKembali{
				ItemID:    ni.Item.ID,
				Kondisi:   nk.Kondisi,
				Jumlah:    nk.Jumlah,
				Hilang:    nk.Hilang,
				Denda:     ip.Kondisi[idx].Denda,
				ModalAwal: ip.Kondisi[idx].ModalAwal,
				CreatedBy: actorID,
			}
			if err = s.r.InsertKondisi(ctx, tx, row); err != nil {
				return nil, wrapStoreErr(err)
			}
			pi.Kondisi = append(pi.Kondisi, *row)

			addQty += nk.Jumlah
			if nk.Hilang {
				hilangQty += nk.Jumlah
			} else {
				kembaliQty += nk.Jumlah
			}
		}
		settled[ni.Item.ID] = addQty

		newTotal := ni.Item.JumlahKembali + addQty
		status := model.ItemPartial
		if newTotal == ni.Item.JumlahDiambil {
			status = model.ItemReturned
		}
		pi.Status = status

		multi := ni.Item.MultiKondisi || len(ni.Kondisi) > 1 || ni.Item.JumlahKembali > 0
		upd := ItemReturnUpdate{
			ItemID:       ni.Item.ID,
			AddJumlah:    addQty,
			AddDenda:     ip.Denda,
			KondisiAkhir: summarizeKondisi(ni.Item.KondisiAkhir, ni.Kondisi),
			MultiKondisi: multi,
			Status:       status,
		}
		if err = s.r.UpdateItemReturn(ctx, tx, upd); err != nil {
			return nil, wrapStoreErr(err)
		}

		// additive inventory move for this call only; lost units are
		// written off, never credited back to available
		if err = s.p.AdjustInventory(ctx, tx, ni.Item.ProdukID, kembaliQty, hilangQty); err != nil {
			return nil, wrapStoreErr(err)
		}

		processed = append(processed, pi)
	}

	newStatus := model.TransaksiPartial
	complete := true
	for _, it := range items {
		if it.JumlahKembali+settled[it.ID] < it.JumlahDiambil {
			complete = false
			break
		}
	}
	var tglPtr *time.Time
	if complete {
		newStatus = model.TransaksiReturned
		tglPtr = &tglKembali
	}

	bd := Aggregate(penalties)
	payload, err := json.Marshal(map[string]any{
		"items":      len(processed),
		"breakdown":  bd,
		"status":     newStatus,
		"tglKembali": tglKembali,
	})
	if err != nil {
		return nil, err
	}
	act := &model.Aktivitas{
		ID:          uuid.NewString(),
		TransaksiID: transaksiID,
		Tipe:        model.AktivitasPengembalian,
		Deskripsi:   fmt.Sprintf("pengembalian %d item, %s", len(processed), bd.Summary),
		Data:        payload,
		CreatedBy:   actorID,
	}
	if err = s.r.InsertAktivitas(ctx, tx, act); err != nil {
		return nil, wrapStoreErr(err)
	}

	var catatan *string
	if req.Catatan != "" {
		catatan = &req.Catatan
	}
	fin := ReturnFinalize{
		TransaksiID: transaksiID,
		Status:      newStatus,
		AddDenda:    bd.TotalDenda,
		TglKembali:  tglPtr,
		Catatan:     catatan,
	}
	if err = s.r.FinishTransaksi(ctx, tx, fin); err != nil {
		return nil, wrapStoreErr(err)
	}

	if err = tx.Commit(); err != nil {
		return nil, wrapStoreErr(err)
	}

	snapshot := *locked
	snapshot.Status = newStatus
	snapshot.TotalDenda += bd.TotalDenda
	snapshot.SisaBayar = snapshot.TotalHarga + snapshot.TotalDenda - snapshot.TotalBayar
	if tglPtr != nil {
		snapshot.TglKembali = tglPtr
	}
	snapshot.Items = nil

	s.sendStruk(&snapshot, bd)

	return &ReturnResult{
		TransaksiID:    transaksiID,
		TotalDenda:     bd.TotalDenda,
		ProcessedItems: processed,
		Transaksi:      &snapshot,
		Breakdown:      bd,
	}, nil
}

// sendStruk pushes the receipt to the webhook after commit. Failures
// are logged, never surfaced; the aktivitas row already has the truth.
func (s *service) sendStruk(t *model.Transaksi, bd PenaltyBreakdown) {
	if s.n == nil {
		return
	}
	rincian, _ := json.Marshal(bd.Items)
	struk := StrukPengembalian{
		TransaksiID:   t.ID,
		Kode:          t.Kode,
		TotalDenda:    bd.TotalDenda,
		TotalLateDays: bd.TotalLateDays,
		Ringkasan:     bd.Summary,
		Rincian:       rincian,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.n.KirimStruk(ctx, struk); err != nil {
			slog.Warn("kirim struk", "transaksi_id", t.ID, "err", err)
		}
	}()
}

// summarizeKondisi folds this call's splits into the item's final
// condition summary, e.g. "2x Baik; 1x Hilang", appended to whatever a
// prior partial return already recorded.
func summarizeKondisi(prev *string, kondisi []NormalizedKondisi) string {
	counts := make(map[string]int64, len(kondisi))
	order := make([]string, 0, len(kondisi))
	for _, k := range kondisi {
		if _, ok := counts[k.Kondisi]; !ok {
			order = append(order, k.Kondisi)
		}
		counts[k.Kondisi] += k.Jumlah
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i] < order[j] })

	parts := make([]string, 0, len(order))
	for _, desc := range order {
		parts = append(parts, fmt.Sprintf("%dx %s", counts[desc], desc))
	}
	summary := strings.Join(parts, "; ")
	if prev != nil && *prev != "" {
		return *prev + "; " + summary
	}
	return summary
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	return wrapStoreErr(err)
}
