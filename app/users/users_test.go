package users

import (
	"context"
	"testing"

	"github.com/m3rciful/hrbot/app/migrations/migrationstest"
)

func TestRegistries(t *testing.T) {
	cases := []struct {
		name string
		reg  func(t *testing.T) Registry
	}{
		{"memory", func(*testing.T) Registry { return NewMemoryRegistry() }},
		{"sqlite", func(t *testing.T) Registry { return NewSQLRegistry(migrationstest.OpenSQLite(t)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := tc.reg(t)
			ctx := context.Background()
			for _, id := range []int64{30, 10, 30, 20, 0} {
				if err := reg.Add(ctx, id); err != nil {
					t.Fatalf("add %d: %v", id, err)
				}
			}
			all, err := reg.All(ctx)
			if err != nil {
				t.Fatalf("all: %v", err)
			}
			if len(all) != 3 || all[0] != 10 || all[2] != 30 {
				t.Fatalf("all = %v", all)
			}
			if n, _ := reg.Count(ctx); n != 3 {
				t.Fatalf("count = %d", n)
			}
		})
	}
}
