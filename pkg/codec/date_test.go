package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContainerForm(t *testing.T) {
	tests := []struct {
		iso     string
		want    string
		wantErr bool
	}{
		{iso: "2013-10-01", want: "10/1/2013"},
		{iso: "1999-01-09", want: "1/9/1999"},
		{iso: "2020-12-31", want: "12/31/2020"},
		{iso: "2013-1-1", want: "1/1/2013"},
		{iso: "", wantErr: true},
		{iso: "2013-10", wantErr: true},
		{iso: "2013-10-01-05", wantErr: true},
		{iso: "2013--01", wantErr: true},
		{iso: "-10-01", wantErr: true},
		{iso: "2013-ab-01", wantErr: true},
		{iso: "2013-13-01", wantErr: true},
		{iso: "2013-00-01", wantErr: true},
		{iso: "2013-10-32", wantErr: true},
		{iso: "10/1/2013", wantErr: true},
		{iso: "2013-+1-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			got, err := ToContainerForm(tt.iso)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToISOForm(t *testing.T) {
	tests := []struct {
		native string
		want   string
	}{
		{native: "10/1/2013", want: "2013-10-01"},
		{native: "1/9/1999", want: "1999-01-09"},
		{native: "01/09/1999", want: "1999-01-09"},
		{native: "12/31/2020", want: "2020-12-31"},
		{native: "", want: ""},
		{native: "10/1", want: ""},
		{native: "2013-10-01", want: ""},
		{native: "x/1/2013", want: ""},
		{native: "10/1/", want: ""},
		{native: "13/1/2013", want: ""},
		{native: "10/1/2013/1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, ToISOForm(tt.native))
		})
	}
}

func TestDateTranscoding_Inverse(t *testing.T) {
	for _, year := range []int{1871, 1999, 2013, 2026} {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= 31; day++ {
				iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
				native, err := ToContainerForm(iso)
				require.NoError(t, err, iso)
				assert.Equal(t, iso, ToISOForm(native))
			}
		}
	}
}
