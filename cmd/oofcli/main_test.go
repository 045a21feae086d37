package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/outflow/engine/frame/layout"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><head><style>
#cb { position: relative; width: 100px; height: 100px; }
#abs { position: absolute; inset: 0 0 0 80px; width: 50px; height: 20px;
       position-try-options: --alt; }
@position-try --alt { left: 10px; }
</style></head>
<body><div id="cb"><div id="abs"></div></div></body></html>`

func TestCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.cli")
	defer teardown()
	//
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.html")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	intp := &Intp{cfg: layout.DefaultConfig()}
	_, err := intp.execute([]string{"offsets", "abs"})
	assert.ErrorIs(t, err, errNoTree)
	//
	_, err = intp.execute([]string{"load", path})
	require.NoError(t, err)
	_, err = intp.execute([]string{"offsets", "abs"})
	assert.NoError(t, err)
	_, err = intp.execute([]string{"offsets", "nobody"})
	assert.Error(t, err)
	_, err = intp.execute([]string{"dot", filepath.Join(dir, "tree.dot")})
	require.NoError(t, err)
	dot, err := os.ReadFile(filepath.Join(dir, "tree.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")
	_, err = intp.execute([]string{"scroll", "abs", "0px", "0px"})
	assert.NoError(t, err)
	_, err = intp.execute([]string{"paged", "on"})
	assert.NoError(t, err)
	assert.True(t, intp.tree.Paginated)
	//
	quit, err := intp.execute([]string{"quit"})
	assert.NoError(t, err)
	assert.True(t, quit)
	_, err = intp.execute([]string{"frobnicate"})
	assert.Error(t, err)
}
