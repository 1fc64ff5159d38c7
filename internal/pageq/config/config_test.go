package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tempDir := t.TempDir()
	checkFile1 := filepath.Join(tempDir, "check1.yaml")
	checkFile2 := filepath.Join(tempDir, "check2.yaml")

	if err := os.WriteFile(checkFile1, []byte("name: check"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(checkFile2, []byte("name: check"), 0644); err != nil {
		t.Fatal(err)
	}

	caCertFile := filepath.Join(tempDir, "ca.pem")
	if err := os.WriteFile(caCertFile, []byte("-----BEGIN CERTIFICATE-----\ntest\n-----END CERTIFICATE-----\n"), 0644); err != nil {
		t.Fatal(err)
	}

	baseDir := filepath.Join(tempDir, "pages")
	if err := os.Mkdir(baseDir, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    *Config
		wantErr bool
	}{
		{
			name: "valid_single_file",
			args: []string{"pageq", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "valid_multiple_files",
			args: []string{"pageq", checkFile1, checkFile2},
			want: &Config{
				CheckFiles:     []string{checkFile1, checkFile2},
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "with_insecure_flag",
			args: []string{"pageq", "--insecure", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				Insecure:       true,
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "with_cacert",
			args: []string{"pageq", "--cacert", caCertFile, checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				CACertFile:     caCertFile,
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "with_timeout",
			args: []string{"pageq", "--timeout", "10s", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				RequestTimeout: 10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "with_rate_limit",
			args: []string{"pageq", "--rate-limit", "10", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				RequestTimeout: DefaultTimeout,
				RateLimit:      10,
			},
			wantErr: false,
		},
		{
			name: "with_fractional_rate_limit",
			args: []string{"pageq", "--rate-limit", "0.5", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				RequestTimeout: DefaultTimeout,
				RateLimit:      0.5,
			},
			wantErr: false,
		},
		{
			name: "with_base_dir",
			args: []string{"pageq", "--base", baseDir, checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				RequestTimeout: DefaultTimeout,
				BaseDir:        baseDir,
			},
			wantErr: false,
		},
		{
			name: "with_repeat_flag",
			args: []string{"pageq", "--repeat", "3", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				Repeat:         3,
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "with_infinite_repeat",
			args: []string{"pageq", "--repeat", "-1", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				Repeat:         -1,
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "with_debug_flag",
			args: []string{"pageq", "--debug", checkFile1},
			want: &Config{
				CheckFiles:     []string{checkFile1},
				Debug:          true,
				RequestTimeout: DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name:    "no_arguments",
			args:    []string{},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "missing_check_files",
			args:    []string{"pageq"},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "nonexistent_check_file",
			args:    []string{"pageq", filepath.Join(tempDir, "missing.yaml")},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "nonexistent_cacert",
			args:    []string{"pageq", "--cacert", filepath.Join(tempDir, "missing.pem"), checkFile1},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "nonexistent_base_dir",
			args:    []string{"pageq", "--base", filepath.Join(tempDir, "missing"), checkFile1},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "base_dir_is_file",
			args:    []string{"pageq", "--base", checkFile1, checkFile1},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "invalid_timeout",
			args:    []string{"pageq", "--timeout", "invalid", checkFile1},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "invalid_rate_limit",
			args:    []string{"pageq", "--rate-limit", "invalid", checkFile1},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "invalid_repeat_format",
			args:    []string{"pageq", "--repeat", "invalid", checkFile1},
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, exitResult := Parse(tt.args)

			if tt.wantErr {
				if exitResult == nil {
					t.Errorf("Parse() expected error but got none")
					return
				}
				if exitResult.ExitCode != 1 {
					t.Errorf("Parse() error should have exit code 1, got %d", exitResult.ExitCode)
				}
				return
			}

			if exitResult != nil {
				t.Errorf("Parse() unexpected error: exit code %d, message: %s", exitResult.ExitCode, exitResult.Message)
				return
			}

			if !reflect.DeepEqual(cfg, tt.want) {
				t.Errorf("Parse() = %v, want %v", cfg, tt.want)
			}
		})
	}
}

func TestParseHelpFlag(t *testing.T) {
	_, exitResult := Parse([]string{"pageq", "-help"})
	if exitResult == nil {
		t.Fatal("expected exit result for help flag")
	}
	if exitResult.ExitCode != 0 {
		t.Errorf("expected exit code 0 for help, got %d", exitResult.ExitCode)
	}

	_, exitResult = Parse([]string{"pageq", "--help"})
	if exitResult == nil {
		t.Fatal("expected exit result for --help flag")
	}
	if exitResult.ExitCode != 0 {
		t.Errorf("expected exit code 0 for --help, got %d", exitResult.ExitCode)
	}
}

func TestConfigHTTPClient(t *testing.T) {
	cfg := &Config{
		RequestTimeout: 5 * time.Second,
		Insecure:       true,
	}

	client, err := cfg.HTTPClient()
	if err != nil {
		t.Fatalf("HTTPClient() unexpected error: %v", err)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("HTTPClient() timeout = %v, want %v", client.Timeout, 5*time.Second)
	}
}

func TestConfigTLSConfig(t *testing.T) {
	t.Run("insecure", func(t *testing.T) {
		cfg := &Config{Insecure: true}
		tlsConfig, err := cfg.TLSConfig()
		if err != nil {
			t.Fatalf("TLSConfig() unexpected error: %v", err)
		}
		if !tlsConfig.InsecureSkipVerify {
			t.Error("TLSConfig() InsecureSkipVerify = false, want true")
		}
	})

	t.Run("invalid_ca_cert", func(t *testing.T) {
		tempDir := t.TempDir()
		caCertFile := filepath.Join(tempDir, "bad.pem")
		if err := os.WriteFile(caCertFile, []byte("not a certificate"), 0644); err != nil {
			t.Fatal(err)
		}

		cfg := &Config{CACertFile: caCertFile}
		if _, err := cfg.TLSConfig(); err == nil {
			t.Error("TLSConfig() expected error for invalid CA certificate")
		}
	})

	t.Run("missing_ca_cert", func(t *testing.T) {
		cfg := &Config{CACertFile: "/nonexistent/ca.pem"}
		if _, err := cfg.TLSConfig(); err == nil {
			t.Error("TLSConfig() expected error for missing CA certificate")
		}
	})
}
