/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_DescribesBuild(t *testing.T) {
	info := Info()

	assert.True(t, strings.HasPrefix(info, "groundwork "+version))
	assert.Contains(t, info, commit)
	assert.Contains(t, info, runtime.Version())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
	assert.NotContains(t, info, "\n", "version output is a single line")
}

func TestShort_IsBareVersion(t *testing.T) {
	assert.Equal(t, version, Short())
}
