package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCountersExposed(t *testing.T) {
	m := New()
	m.IncSegmentsPlaced()
	m.IncSegmentsPlaced()
	m.IncDuplicatesDiscarded()

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	text := string(body)
	if !strings.Contains(text, "aircheck_segments_placed_total 2") {
		t.Fatalf("missing placed counter:\n%s", text)
	}
	if !strings.Contains(text, "aircheck_duplicates_discarded_total 1") {
		t.Fatalf("missing duplicates counter:\n%s", text)
	}
}

func TestNilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.IncSegmentsPlaced()
	m.IncNotifyFailures()
	m.IncPlacementFailures()
}
