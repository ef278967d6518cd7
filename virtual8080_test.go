/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, genImage(fs, "blank.dsk"))

	data, err := afero.ReadFile(fs, "blank.dsk")
	require.NoError(t, err)
	assert.Len(t, data, 77*26*128)
	assert.Equal(t, byte(0xE5), data[len(data)-1])
}
