package database

import "testing"

func TestMongoDatabaseName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017/journal_audit":                      "journal_audit",
		"mongodb+srv://u:p@cluster.example.net/audit?retryWrites=true": "audit",
		"mongodb://localhost:27017/":                                   "journal",
		"mongodb://localhost:27017":                                    "journal",
	}
	for uri, want := range tests {
		if got := mongoDatabaseName(uri); got != want {
			t.Errorf("mongoDatabaseName(%q) = %q, want %q", uri, got, want)
		}
	}
}
