package geo

import (
	"testing"

	"changemakers/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *types.Coordinate
	}{
		{name: "plain pair", input: "-1.29, 36.82", want: &types.Coordinate{Lat: -1.29, Lng: 36.82}},
		{name: "no space", input: "0.5,-120", want: &types.Coordinate{Lat: 0.5, Lng: -120}},
		{name: "hemispheres", input: "1.29° S, 36.82° E", want: &types.Coordinate{Lat: -1.29, Lng: 36.82}},
		{name: "hemisphere forces sign", input: "-1.29 N, 36.82 W", want: &types.Coordinate{Lat: 1.29, Lng: -36.82}},
		{name: "lowercase hemispheres", input: "4.05s, 39.66e", want: &types.Coordinate{Lat: -4.05, Lng: 39.66}},
		{name: "axes swapped by hemisphere", input: "36.82° E, 1.29° S", want: &types.Coordinate{Lat: -1.29, Lng: 36.82}},
		{name: "bounds inclusive", input: "90, -180", want: &types.Coordinate{Lat: 90, Lng: -180}},
		{name: "latitude out of range", input: "91, 10"},
		{name: "longitude out of range", input: "10, 180.5"},
		{name: "south pushes out of range", input: "95 S, 10 E"},
		{name: "both latitudes", input: "1 N, 2 S"},
		{name: "one component", input: "1.5"},
		{name: "three components", input: "1, 2, 3"},
		{name: "garbage", input: "nairobi, kenya"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}

			require.True(t, ok)
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
			assert.InDelta(t, tt.want.Lng, got.Lng, 1e-9)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&types.Coordinate{Lat: -1.29, Lng: 36.82}))
	assert.NoError(t, Validate(&types.Coordinate{Lat: 0, Lng: 0}))

	for _, c := range []*types.Coordinate{
		nil,
		{Lat: -90.0001, Lng: 0},
		{Lat: 0, Lng: 181},
		&Placeholder,
	} {
		err := Validate(c)
		require.Error(t, err)
		assert.True(t, types.IsValidation(err))

		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "coordinate", vErr.Field)
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(types.Coordinate{Lat: -1.2921, Lng: 36.8219}))
	assert.False(t, IsPlaceholder(types.Coordinate{Lat: -1.2921, Lng: 36.822}))
}

func TestValidateGeofence(t *testing.T) {
	assert.NoError(t, ValidateGeofence(nil))
	assert.Error(t, ValidateGeofence([]types.Coordinate{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}))
	assert.Error(t, ValidateGeofence([]types.Coordinate{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 99, Lng: 2}}))
	assert.NoError(t, ValidateGeofence([]types.Coordinate{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 1, Lng: 2}}))
}
