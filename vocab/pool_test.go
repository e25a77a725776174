package vocab

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"lingotale/models"
)

func TestRemoveCaseInsensitiveDuplicates(t *testing.T) {
	testCases := []struct {
		name  string
		words []string
		want  []string
	}{
		{
			name:  "first seen casing wins",
			words: []string{"Casa", "casa", "CASA", "perro"},
			want:  []string{"Casa", "perro"},
		},
		{
			name:  "order preserved",
			words: []string{"b", "a", "B", "c", "A"},
			want:  []string{"b", "a", "c"},
		},
		{
			name:  "no duplicates untouched",
			words: []string{"uno", "dos", "tres"},
			want:  []string{"uno", "dos", "tres"},
		},
		{
			name:  "empty input",
			words: nil,
			want:  []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemoveCaseInsensitiveDuplicates(tc.words)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRemoveCaseInsensitiveDuplicatesLength(t *testing.T) {
	// Output length must equal the number of distinct lowercase forms.
	words := []string{"Sol", "sol", "Luna", "LUNA", "mar", "Mar", "MAR", "cielo"}
	distinct := map[string]struct{}{}
	for _, w := range words {
		distinct[strings.ToLower(w)] = struct{}{}
	}
	got := RemoveCaseInsensitiveDuplicates(words)
	if len(got) != len(distinct) {
		t.Errorf("got %d words, want %d distinct forms", len(got), len(distinct))
	}
}

func TestEditWords(t *testing.T) {
	got := EditWords([]string{"a", "b", "c"}, []string{"b"}, []string{"c", "d"})
	want := []string{"a", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconcile(t *testing.T) {
	t.Run("first generation", func(t *testing.T) {
		got := Reconcile(nil, []string{"uno", "Uno", "dos"})
		want := []string{"uno", "dos"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("erases promoted words and dedups", func(t *testing.T) {
		pool := &models.Pool{
			BaseWords:        []string{"a", "A", "b"},
			GettingUsedWords: []string{"b"},
			ComfortableWords: []string{},
		}
		got := Reconcile(pool, []string{"c", "A"})
		want := []string{"a", "c"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("comfortable words erased too", func(t *testing.T) {
		pool := &models.Pool{
			BaseWords:        []string{"lago", "rio"},
			GettingUsedWords: []string{},
			ComfortableWords: []string{"rio"},
		}
		got := Reconcile(pool, []string{"mar"})
		want := []string{"lago", "mar"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestAdjustedQuota(t *testing.T) {
	many := func(n int) []string {
		words := make([]string, n)
		for i := range words {
			words[i] = "w"
		}
		return words
	}

	testCases := []struct {
		name        string
		pool        *models.Pool
		defaultSize int
		want        int
	}{
		{
			name:        "no pool keeps default",
			pool:        nil,
			defaultSize: 20,
			want:        20,
		},
		{
			name:        "small tiers keep default",
			pool:        &models.Pool{ComfortableWords: many(10), GettingUsedWords: many(10)},
			defaultSize: 20,
			want:        20,
		},
		{
			name:        "comfortable overflow grows quota",
			pool:        &models.Pool{ComfortableWords: many(11), GettingUsedWords: many(2)},
			defaultSize: 20,
			want:        20 + 9 + 2, // round(11*.85)=9, round(2*.85)=2
		},
		{
			name:        "getting used overflow grows quota",
			pool:        &models.Pool{ComfortableWords: many(0), GettingUsedWords: many(12)},
			defaultSize: 20,
			want:        20 + 10, // round(12*.85)=10
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AdjustedQuota(tc.defaultSize, tc.pool)
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAdjustedQuotaMonotonic(t *testing.T) {
	// Whenever a promoted tier exceeds half the default, the quota must
	// strictly exceed the default.
	for n := 11; n <= 40; n++ {
		words := make([]string, n)
		pool := &models.Pool{ComfortableWords: words}
		if got := AdjustedQuota(20, pool); got <= 20 {
			t.Fatalf("quota %d for %d comfortable words, want > 20", got, n)
		}
	}
}

func TestMoveWords(t *testing.T) {
	pool := models.Pool{
		BaseWords:        []string{"sol", "luna"},
		GettingUsedWords: []string{"mar"},
		ComfortableWords: []string{"rio"},
	}

	next, err := MoveWords(pool, []string{"sol", "mar"}, models.TierComfortable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(next.BaseWords, []string{"luna"}) {
		t.Errorf("base = %v, want [luna]", next.BaseWords)
	}
	if !reflect.DeepEqual(next.GettingUsedWords, []string{}) {
		t.Errorf("getting used = %v, want empty", next.GettingUsedWords)
	}
	if !reflect.DeepEqual(next.ComfortableWords, []string{"rio", "sol", "mar"}) {
		t.Errorf("comfortable = %v, want [rio sol mar]", next.ComfortableWords)
	}
}

func TestMoveWordsInvalidTier(t *testing.T) {
	_, err := MoveWords(models.Pool{}, []string{"sol"}, "mastered_words")
	if !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("error = %v, want ErrInvalidTier", err)
	}
}

func TestTiersStayDisjoint(t *testing.T) {
	pool := models.Pool{
		BaseWords:        []string{"a", "b", "c"},
		GettingUsedWords: []string{"d"},
		ComfortableWords: []string{"e"},
	}

	moves := []struct {
		words  []string
		target string
	}{
		{[]string{"a"}, models.TierGettingUsed},
		{[]string{"d", "b"}, models.TierComfortable},
		{[]string{"e"}, models.TierBase},
		{[]string{"a"}, models.TierComfortable},
	}
	for _, m := range moves {
		var err error
		pool, err = MoveWords(pool, m.words, m.target)
		if err != nil {
			t.Fatalf("move %v: %v", m.words, err)
		}
		assertDisjoint(t, pool)
	}

	pool.BaseWords = Reconcile(&pool, []string{"f", "A", "d"})
	assertDisjoint(t, pool)
}

func assertDisjoint(t *testing.T, pool models.Pool) {
	t.Helper()
	seen := map[string]string{}
	tiers := map[string][]string{
		models.TierBase:        pool.BaseWords,
		models.TierGettingUsed: pool.GettingUsedWords,
		models.TierComfortable: pool.ComfortableWords,
	}
	for name, words := range tiers {
		for _, w := range words {
			folded := strings.ToLower(w)
			if other, ok := seen[folded]; ok && other != name {
				t.Fatalf("word %q present in both %s and %s", w, other, name)
			}
			seen[folded] = name
		}
	}
}
