package log

import (
	"testing"
)

func TestDefaultConf(t *testing.T) {
	conf := SetDefaults()

	if conf.Output != "stdout" {
		t.Errorf("expected output to be stdout, got %s", conf.Output)
	}

	if conf.Level != "INFO" {
		t.Errorf("expected level to be INFO, got %s", conf.Level)
	}

	if conf.KeepDays != 7 {
		t.Errorf("expected KeepDays to be 7, got %d", conf.KeepDays)
	}
}

func TestConf_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conf    *Conf
		wantErr bool
	}{
		{
			name: "valid stdout config",
			conf: &Conf{
				Output: "stdout",
				Level:  "INFO",
			},
			wantErr: false,
		},
		{
			name: "valid file config",
			conf: &Conf{
				Output:     "file",
				Path:       "./logs",
				Filename:   "tenancy.log",
				RotateSize: 100,
				RotateNum:  10,
				KeepDays:   7,
			},
			wantErr: false,
		},
		{
			name: "file config without path",
			conf: &Conf{
				Output: "file",
			},
			wantErr: true,
		},
		{
			name: "file config fills zero rotation values",
			conf: &Conf{
				Output: "file",
				Path:   "./logs",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLog(t *testing.T) {
	conf := SetDefaults()
	conf.Level = "DEBUG"

	logger, err := NewLog(conf)
	if err != nil {
		t.Fatalf("NewLog() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLog() returned nil logger")
	}

	if GetLogger() == nil {
		t.Error("GetLogger() returned nil after init")
	}
}
