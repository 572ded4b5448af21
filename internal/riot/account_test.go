package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestPlatformContinent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"br1", "americas"}, {"NA1", "americas"}, {"la1", "americas"},
		{"kr", "asia"}, {"jp1", "asia"},
		{"euw1", "europe"}, {"eun1", "europe"}, {"tr1", "europe"}, {"me1", "europe"},
		{"sg2", "sea"}, {"vn2", "sea"},
		{"na", ""}, {"xx1", ""},
	}
	for _, tc := range tests {
		if got := PlatformContinent(tc.input); got != tc.want {
			t.Fatalf("PlatformContinent(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizePlatformRegion(t *testing.T) {
	if got := NormalizePlatformRegion("  BR1  "); got != "br1" {
		t.Fatalf("NormalizePlatformRegion() = %q, want %q", got, "br1")
	}
	if got := NormalizePlatformRegion("invalid"); got != "" {
		t.Fatalf("NormalizePlatformRegion() = %q, want empty", got)
	}
}

func TestSplitRiotID(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantTag  string
		wantErr  error
	}{
		{"Pinkward#NA1", "Pinkward", "NA1", nil},
		{"Name#With#Hash", "Name#With", "Hash", nil},
		{" ", "", "", ErrRiotIDRequired},
		{"Pinkward", "", "", ErrInvalidRiotID},
		{"#NA1", "", "", ErrInvalidRiotID},
		{"Pinkward#", "", "", ErrInvalidRiotID},
	}
	for _, tt := range tests {
		name, tag, err := SplitRiotID(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("SplitRiotID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
		}
		if err == nil && (name != tt.wantName || tag != tt.wantTag) {
			t.Fatalf("SplitRiotID(%q) = (%q, %q), want (%q, %q)", tt.input, name, tag, tt.wantName, tt.wantTag)
		}
	}
}

func TestFormatRiotID(t *testing.T) {
	if got := FormatRiotID(" Pinkward ", "#NA1 "); got != "Pinkward#NA1" {
		t.Fatalf("FormatRiotID() = %q, want %q", got, "Pinkward#NA1")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "wrapped not found",
			err:  fmt.Errorf("wrapped: %w", &HTTPStatusError{URL: "https://americas.api.riotgames.com/riot/account/v1/accounts/by-riot-id/a/b", StatusCode: http.StatusNotFound}),
			want: true,
		},
		{
			name: "forbidden",
			err:  &HTTPStatusError{StatusCode: http.StatusForbidden},
			want: false,
		},
		{
			name: "non status error",
			err:  errors.New("boom"),
			want: false,
		},
	}
	for _, tt := range tests {
		if got := IsNotFound(tt.err); got != tt.want {
			t.Fatalf("IsNotFound(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFetchAccountByRiotID(t *testing.T) {
	client, hits := newTestClient(t, map[string]string{
		"/americas/riot/account/v1/accounts/by-riot-id/Pink%20ward/NA1": `{"puuid":"puuid-1","gameName":"Pink ward","tagLine":"NA1"}`,
	})

	account, err := client.FetchAccountByRiotID(context.Background(), "na1", "Pink ward", "#NA1")
	if err != nil {
		t.Fatalf("FetchAccountByRiotID() error = %v", err)
	}
	if account.PUUID != "puuid-1" || account.GameName != "Pink ward" {
		t.Fatalf("FetchAccountByRiotID() = %+v", account)
	}
	if len(*hits) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*hits))
	}
}

func TestFetchAccountByRiotID_UnsupportedRegion(t *testing.T) {
	client, hits := newTestClient(t, nil)
	if _, err := client.FetchAccountByRiotID(context.Background(), "moon1", "Pinkward", "NA1"); err == nil {
		t.Fatalf("expected unsupported region error")
	}
	if len(*hits) != 0 {
		t.Fatalf("no request should be sent, got %d", len(*hits))
	}
}

func TestFetchSummonerByPUUID(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"/na1/lol/summoner/v4/summoners/by-puuid/puuid-1": `{"puuid":"puuid-1","profileIconId":29,"summonerLevel":312}`,
	})

	profile, err := client.FetchSummonerByPUUID(context.Background(), "NA1", "puuid-1")
	if err != nil {
		t.Fatalf("FetchSummonerByPUUID() error = %v", err)
	}
	if profile.SummonerLevel != 312 || profile.ProfileIconID != 29 {
		t.Fatalf("FetchSummonerByPUUID() = %+v", profile)
	}
}

func TestFetchChampionRotation_InvalidKey(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.FetchChampionRotation(context.Background(), "na1")
	statusErr, ok := errors.AsType[*HTTPStatusError](err)
	if !ok {
		t.Fatalf("FetchChampionRotation() error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}
