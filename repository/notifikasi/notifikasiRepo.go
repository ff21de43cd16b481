package notifikasirepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/EviewNicks/rental-baju-sub003/util/httpx"
)

// StrukPengembalian is the receipt pushed to the shop's webhook after a
// return commits. Best-effort; the aktivitas row is the source of truth.
type StrukPengembalian struct {
	TransaksiID   int64           `json:"transaksi_id"`
	Kode          string          `json:"kode"`
	TotalDenda    int64           `json:"total_denda"`
	TotalLateDays int64           `json:"total_late_days"`
	Ringkasan     string          `json:"ringkasan"`
	Rincian       json.RawMessage `json:"rincian,omitempty"`
}

type Repo interface {
	KirimStruk(ctx context.Context, s StrukPengembalian) error
}

type httpRepo struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTP(url, token string) Repo {
	return &httpRepo{url: url, token: token, client: httpx.Client()}
}

func (r *httpRepo) KirimStruk(ctx context.Context, s StrukPengembalian) error {
	if r.url == "" {
		return nil
	}
	b, _ := json.Marshal(s)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook struk failed: %s", resp.Status)
	}
	return nil
}
