package handler

import "testing"

func TestSanitizeEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/videos", "/api/videos"},
		{"/api/videos/3f2b8c1e-7a4d-4e6b-9c0a-1d2e3f4a5b6c", "/api/videos/:id"},
		{"/api/videos/3f2b8c1e-7a4d-4e6b-9c0a-1d2e3f4a5b6c/like", "/api/videos/:id/like"},
		{"/api/admin/users/3f2b8c1e-7a4d-4e6b-9c0a-1d2e3f4a5b6c/role", "/api/admin/users/:id/role"},
		{"/api/videos/trending", "/api/videos/trending"},
		{"/uploads/videos/ab12.mp4", "/uploads/*"},
	}
	for _, tt := range tests {
		if got := sanitizeEndpoint(tt.path); got != tt.want {
			t.Errorf("sanitizeEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsHelpersWithoutInit(t *testing.T) {
	// Collectors are nil until InitMetrics; helpers must be safe to call.
	countInteraction("view")
	CountCleanup(3)
	CacheMetrics{}.CacheHit("catalog:tags")
	CacheMetrics{}.CacheMiss("catalog:tags")
}
