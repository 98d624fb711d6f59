package db

import (
	"strings"
	"testing"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "postgres scheme",
			in:   "postgres://folio:pw@localhost:5432/folio?sslmode=disable",
			want: "pgx5://folio:pw@localhost:5432/folio?sslmode=disable",
		},
		{
			name: "postgresql scheme",
			in:   "postgresql://folio:pw@localhost:5432/folio",
			want: "pgx5://folio:pw@localhost:5432/folio",
		},
		{
			name: "uppercase scheme",
			in:   "POSTGRES://folio:pw@localhost:5432/folio",
			want: "pgx5://folio:pw@localhost:5432/folio",
		},
		{
			name:    "wrong scheme",
			in:      "mysql://root@localhost:3306/folio",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrateURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("migrateURL() = nil error, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("migrateURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir(migrations): %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations found")
	}

	var ups, downs int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		default:
			t.Errorf("unexpected migration file %q", e.Name())
		}
	}
	if ups != downs {
		t.Errorf("unmatched migrations: %d up, %d down", ups, downs)
	}
}
