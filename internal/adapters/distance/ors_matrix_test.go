package distance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrixQuery(t *testing.T) {
	q := newMatrixQuery(
		domain.Coordinates{Lon: 77.5, Lat: 12.9},
		[]domain.Coordinates{{Lon: 77.6, Lat: 12.93}, {Lon: 77.7, Lat: 12.97}},
	)

	assert.Equal(t, [][]float64{{77.5, 12.9}, {77.6, 12.93}, {77.7, 12.97}}, q.Locations)
	assert.Equal(t, []int{1, 2}, q.Destinations)
	assert.Equal(t, []int{0}, q.Sources)
}

func matrixServer(t *testing.T, reply string) *ORSDistanceProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/matrix/driving-car", r.URL.Path)
		var q orsMatrixQuery
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	p, err := NewORSDistanceProvider(ORSConfig{APIKey: "k", BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)
	return p
}

func TestMatrixFromOrigin(t *testing.T) {
	coords := map[string]domain.Coordinates{
		"a": {Lon: 1, Lat: 1},
		"b": {Lon: 2, Lat: 2},
	}

	tests := []struct {
		name    string
		reply   string
		want    int
		wantErr string
	}{
		{
			name:  "rounds cells",
			reply: `{"distances":[[1000.6,2000.2]],"durations":[[59.5,120]]}`,
			want:  1001,
		},
		{
			name:    "null cell",
			reply:   `{"distances":[[1000,null]],"durations":[[60,null]]}`,
			wantErr: `no drivable route to "b"`,
		},
		{
			name:    "short row",
			reply:   `{"distances":[[1000]],"durations":[[60]]}`,
			wantErr: "asked for 2 stops",
		},
		{
			name:    "two source rows",
			reply:   `{"distances":[[1,2],[3,4]],"durations":[[1,2],[3,4]]}`,
			wantErr: "want 1 source row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := matrixServer(t, tt.reply)
			got, err := p.matrixFromOrigin(context.Background(), domain.Coordinates{}, []string{"a", "b"}, coords)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got["a"].DistanceMeters)
			assert.Equal(t, 120, got["b"].DurationSeconds)
		})
	}
}

func TestMatrixFromOriginMissingCoordinates(t *testing.T) {
	p, err := NewORSDistanceProvider(ORSConfig{APIKey: "k"}, nil, nil)
	require.NoError(t, err)

	_, err = p.matrixFromOrigin(context.Background(), domain.Coordinates{}, []string{"ghost"}, nil)
	assert.ErrorContains(t, err, `no coordinates for "ghost"`)
}
