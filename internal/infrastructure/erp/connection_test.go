package erp

import (
	"strings"
	"testing"
	"time"

	"github.com/menucloud/backend/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
)

func testSettings(server string) tenant.ERPSettings {
	return tenant.ERPSettings{
		Server:   server,
		Database: "erp_main",
		Username: "sync",
		Password: "secret",
		Port:     3306,
		Enabled:  true,
	}
}

func TestBuildDSN(t *testing.T) {
	opts := Options{ConnectTimeout: 30 * time.Second, RequestTimeout: 30 * time.Second}

	t.Run("includes credentials and timeouts", func(t *testing.T) {
		dsn := buildDSN(testSettings("10.0.1.20"), opts)

		assert.True(t, strings.HasPrefix(dsn, "sync:secret@tcp(10.0.1.20:3306)/erp_main"))
		assert.Contains(t, dsn, "timeout=30s")
		assert.Contains(t, dsn, "readTimeout=30s")
		assert.Contains(t, dsn, "writeTimeout=30s")
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("relaxed trust for private host", func(t *testing.T) {
		dsn := buildDSN(testSettings("192.168.1.5"), opts)
		assert.Contains(t, dsn, "tls=skip-verify")
	})

	t.Run("relaxed trust for loopback", func(t *testing.T) {
		dsn := buildDSN(testSettings("127.0.0.1"), opts)
		assert.Contains(t, dsn, "tls=skip-verify")
	})

	t.Run("certificate validation for public host", func(t *testing.T) {
		dsn := buildDSN(testSettings("erp.vendor-cloud.com"), opts)
		assert.Contains(t, dsn, "tls=true")
	})
}

func TestIsPrivateHost(t *testing.T) {
	tests := []struct {
		host    string
		private bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"10.0.0.5", true},
		{"172.16.4.1", true},
		{"192.168.0.10", true},
		{"169.254.1.1", true},
		{"8.8.8.8", false},
		{"203.0.113.9", false},
		{"erp.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.private, isPrivateHost(tt.host))
		})
	}
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(Options{}, zapNop())

	assert.Equal(t, 30*time.Second, m.opts.ConnectTimeout)
	assert.Equal(t, 30*time.Second, m.opts.RequestTimeout)
}
