package source

import (
	"testing"
)

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{name: "bucket and prefix", path: "s3://evidence/case-42/intake", wantBucket: "evidence", wantPrefix: "case-42/intake"},
		{name: "bucket only", path: "s3://evidence", wantBucket: "evidence", wantPrefix: ""},
		{name: "bucket with trailing slash", path: "s3://evidence/", wantBucket: "evidence", wantPrefix: ""},
		{name: "missing scheme", path: "evidence/case-42", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "scheme only", path: "s3://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, prefix, err := ParseS3Path(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseS3Path(%q) expected error", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseS3Path(%q) error = %v", tt.path, err)
			}
			if bucket != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", bucket, tt.wantBucket)
			}
			if prefix != tt.wantPrefix {
				t.Errorf("prefix = %q, want %q", prefix, tt.wantPrefix)
			}
		})
	}
}
