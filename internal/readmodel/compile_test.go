package readmodel

import (
	"reflect"
	"strings"
	"testing"
)

func TestCompileSimplePipeline(t *testing.T) {
	p := From("videos", "v").Append(
		Match{Column: "is_published", Value: true},
		Project{Columns: []string{"id", "title"}},
	)

	q, err := Compile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SELECT v.id, v.title FROM videos v WHERE v.is_published = $1 ORDER BY v.created_at DESC"
	if q.SQL != want {
		t.Fatalf("unexpected SQL:\n got: %s\nwant: %s", q.SQL, want)
	}
	if !reflect.DeepEqual(q.Args, []any{true}) {
		t.Fatalf("unexpected args: %v", q.Args)
	}
	if q.CountSQL != "" {
		t.Fatal("unpaginated pipelines must not produce a count query")
	}
}

func TestCompilePaginatedPipeline(t *testing.T) {
	p := From("videos", "v").Append(
		Match{Column: "is_published", Value: true},
		Project{Columns: []string{"id"}},
		LookupOne{Table: "users", Alias: "o", LocalColumn: "owner_id", ForeignColumn: "id", Columns: []string{"username"}},
		DeriveCount{As: "likes_count", Table: "likes", ForeignColumn: "target_id", Extra: []Match{{Column: "target_kind", Value: "video"}}},
		DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by", Actor: "u-9", Extra: []Match{{Column: "target_kind", Value: "video"}}},
		Paginate{Page: 2, Limit: 5},
	)

	q, err := Compile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSQL := "SELECT v.id, o.username, " +
		"(SELECT COUNT(*) FROM likes d WHERE d.target_id = v.id AND d.target_kind = $2) AS likes_count, " +
		"EXISTS(SELECT 1 FROM likes d WHERE d.target_id = v.id AND d.liked_by = $3 AND d.target_kind = $4) AS is_liked " +
		"FROM videos v LEFT JOIN users o ON o.id = v.owner_id " +
		"WHERE v.is_published = $1 ORDER BY v.created_at DESC LIMIT 5 OFFSET 5"
	if q.SQL != wantSQL {
		t.Fatalf("unexpected SQL:\n got: %s\nwant: %s", q.SQL, wantSQL)
	}

	wantCount := "SELECT COUNT(*) FROM videos v LEFT JOIN users o ON o.id = v.owner_id WHERE v.is_published = $1"
	if q.CountSQL != wantCount {
		t.Fatalf("unexpected count SQL:\n got: %s\nwant: %s", q.CountSQL, wantCount)
	}

	if !reflect.DeepEqual(q.Args, []any{true, "video", "u-9", "video"}) {
		t.Fatalf("unexpected args: %v", q.Args)
	}

	// The count query binds only the filter arguments, which lead the
	// argument list.
	if !reflect.DeepEqual(q.CountArgs, []any{true}) {
		t.Fatalf("unexpected count args: %v", q.CountArgs)
	}
	if q.Page.Page != 2 || q.Page.Limit != 5 {
		t.Fatalf("unexpected page: %+v", q.Page)
	}
}

func TestCompileMembershipWithoutActor(t *testing.T) {
	p := From("videos", "v").Append(
		Project{Columns: []string{"id"}},
		DeriveMembership{As: "is_liked", Table: "likes", ForeignColumn: "target_id", MemberColumn: "liked_by"},
	)

	q, err := Compile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(q.SQL, "FALSE AS is_liked") {
		t.Fatalf("anonymous membership should compile to constant FALSE, got: %s", q.SQL)
	}
	if len(q.Args) != 0 {
		t.Fatalf("anonymous membership must not bind arguments, got %v", q.Args)
	}
}

func TestCompilePaginationDefaults(t *testing.T) {
	p := From("videos", "v").Append(
		Project{Columns: []string{"id"}},
		Paginate{},
	)

	q, err := Compile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(q.SQL, "LIMIT 10 OFFSET 0") {
		t.Fatalf("expected default window, got: %s", q.SQL)
	}
	if q.Page.Page != DefaultPage || q.Page.Limit != DefaultLimit {
		t.Fatalf("unexpected normalized page: %+v", q.Page)
	}
}

func TestCompileSortStage(t *testing.T) {
	t.Run("explicit descending sort", func(t *testing.T) {
		p := From("watch_history", "wh").Append(
			Project{Columns: []string{"video_id"}},
			Sort{Column: "watched_at", Descending: true},
		)
		q, err := Compile(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(q.SQL, "ORDER BY wh.watched_at DESC") {
			t.Fatalf("unexpected ordering: %s", q.SQL)
		}
	})

	t.Run("ascending sort", func(t *testing.T) {
		p := From("playlist_videos", "pv").Append(
			Project{Columns: []string{"video_id"}},
			Sort{Column: "added_at"},
		)
		q, err := Compile(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(q.SQL, "ORDER BY pv.added_at ASC") {
			t.Fatalf("unexpected ordering: %s", q.SQL)
		}
	})

	t.Run("defaults to newest first", func(t *testing.T) {
		p := From("tweets", "t").Append(Project{Columns: []string{"id"}})
		q, err := Compile(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(q.SQL, "ORDER BY t.created_at DESC") {
			t.Fatalf("unexpected ordering: %s", q.SQL)
		}
	})
}

func TestCompileLookupLatest(t *testing.T) {
	p := From("users", "u").Append(
		Project{Columns: []string{"id"}},
		LookupLatest{Table: "videos", Alias: "lv", LocalColumn: "id", ForeignColumn: "owner_id", Columns: []string{"title"}},
	)

	q, err := Compile(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantJoin := "LEFT JOIN LATERAL (SELECT * FROM videos WHERE owner_id = u.id ORDER BY created_at DESC LIMIT 1) lv ON TRUE"
	if !strings.Contains(q.SQL, wantJoin) {
		t.Fatalf("expected lateral join:\n got: %s\nwant fragment: %s", q.SQL, wantJoin)
	}
	if !strings.Contains(q.SQL, "lv.title") {
		t.Fatalf("expected latest-row column in select list: %s", q.SQL)
	}
}

func TestCompileRejectsInvalidPipelines(t *testing.T) {
	if _, err := Compile(nil); err == nil {
		t.Error("expected error for nil pipeline")
	}
	if _, err := Compile(From("", "")); err == nil {
		t.Error("expected error for missing root table")
	}
	if _, err := Compile(From("videos", "v")); err == nil {
		t.Error("expected error for pipeline without projected columns")
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"zero value", PageRequest{}, PageRequest{Page: 1, Limit: 10}},
		{"negative values", PageRequest{Page: -2, Limit: -5}, PageRequest{Page: 1, Limit: 10}},
		{"explicit window kept", PageRequest{Page: 3, Limit: 25}, PageRequest{Page: 3, Limit: 25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(PageRequest{Page: 2, Limit: 10}, 21)
	if meta.TotalPages != 3 || meta.TotalCount != 21 {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	empty := NewPageMeta(PageRequest{}, 0)
	if empty.TotalPages != 0 || empty.Page != 1 || empty.Limit != 10 {
		t.Fatalf("unexpected meta for empty result: %+v", empty)
	}
}
