package crypto

import "testing"

func TestGenerateRefreshToken_Length(t *testing.T) {
	token, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if len(token) != refreshTokenBytes*2 {
		t.Errorf("expected %d hex chars, got %d", refreshTokenBytes*2, len(token))
	}
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateRefreshToken()
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatal("generated a duplicate refresh token")
		}
		seen[token] = true
	}
}
