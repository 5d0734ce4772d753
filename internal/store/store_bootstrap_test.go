package store

import "testing"

func TestStoreBootstrap(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	var app string
	if err := st.Pool.QueryRow(ctx, "SELECT current_setting('application_name')").Scan(&app); err != nil {
		t.Fatalf("read application_name: %v", err)
	}
	if app != applicationName {
		t.Fatalf("application_name = %q, want %q", app, applicationName)
	}

	for _, table := range []string{
		"users", "tables", "denominations", "players", "buy_ins",
		"player_chip_counts", "end_chip_counts", "game_histories", "player_game_results",
	} {
		var found bool
		err := st.Pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&found)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if !found {
			t.Fatalf("table %s missing after migration", table)
		}
	}
}
