package calc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/vmcalc/internal/compiler"
	"github.com/shinji-kodama/vmcalc/internal/vm"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  float64
		delta float64
	}{
		{"addition", "1 + 2", 3, 1e-6},
		{"unspaced subtraction", "10-4-3", 3, 1e-9},
		{"complex expression", "1.5 * (4 - 10 / 2 - (-1 * 4e-1))", -0.9, 1e-4},
		{"precedence", "2 + 3 * 4", 14, 1e-9},
		{"nested functions", "-(cos(sqrt(144) * sin(1 + pow(-1, -2))) * 1 / sqrt(44) * 0.005e2)", 0.00632468, 1e-8},
		{"log is natural", "log(1)", 0, 1e-12},
		{"multiline source", "1 +\n 2 *\n 3\n", 7, 1e-9},
		{"trailing dot at end of input", "2 * 7.", 14, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate([]byte(tt.src))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestEvaluate_Empty(t *testing.T) {
	_, err := Evaluate([]byte(""))
	assert.ErrorIs(t, err, vm.ErrEmptyStack)
	assert.Equal(t, StageRuntime, StageOf(err))
}

func TestEvaluate_CompileErrors(t *testing.T) {
	_, err := Evaluate([]byte("1 + (2 + 1 * (1 - 3)"))
	assert.ErrorIs(t, err, compiler.ErrUnterminatedGroup)
	assert.Equal(t, StageCompile, StageOf(err))

	_, err = Evaluate([]byte("1 + ()"))
	var before *compiler.InvalidTokenBeforeError
	require.ErrorAs(t, err, &before)
	assert.Equal(t, ")", before.Prev)
	assert.False(t, before.HasCurrent)
}

func TestEvaluate_InvalidPow(t *testing.T) {
	_, err := Evaluate([]byte("-(cos(sqrt(144) * sin(1 + pow(-1, -1.5))) * 1 / sqrt(44) * 0.005e2)"))
	var domErr *vm.DomainError
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, StageRuntime, StageOf(err))
}

func TestEvaluate_AnsWithoutHistory(t *testing.T) {
	_, err := Evaluate([]byte("ans + 1"))
	assert.ErrorIs(t, err, vm.ErrNoAnswer)
}

func TestStageOf_Foreign(t *testing.T) {
	assert.Equal(t, Stage(""), StageOf(assert.AnError))
}

func TestSession_CarriesAns(t *testing.T) {
	s := NewSession()

	v, err := s.EvalString("6 * 7")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	v, err = s.EvalString("ans / 2")
	require.NoError(t, err)
	assert.Equal(t, 21.0, v)

	// A compile failure does not touch ans.
	_, err = s.EvalString("ans +")
	require.Error(t, err)
	ans, ok := s.Answer()
	require.True(t, ok)
	assert.Equal(t, 21.0, ans)

	// A runtime failure forgets it.
	_, err = s.EvalString("ans / 0")
	assert.ErrorIs(t, err, vm.ErrDivisionByZero)
	_, ok = s.Answer()
	assert.False(t, ok)

	s.SetAnswer(5)
	v, err = s.EvalString("ans * ans")
	require.NoError(t, err)
	assert.Equal(t, 25.0, v)
}

func TestSession_Compile(t *testing.T) {
	s := NewSession()
	code, err := s.Compile([]byte("1 + 2"))
	require.NoError(t, err)
	assert.Len(t, code, 2*(1+compiler.NumberWidth)+1)

	// The returned chunk must survive later compilations.
	_, err = s.Compile([]byte("9 * 9 * 9"))
	require.NoError(t, err)
	assert.Equal(t, byte(compiler.OpPlus), code[len(code)-1])

	_, err = s.Compile([]byte("1 +"))
	assert.Equal(t, StageCompile, StageOf(err))
}

func TestEvalFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	paths := []string{
		write("a.calc", "1 + 1"),
		write("b.calc", "1 / 0"),
		filepath.Join(dir, "missing.calc"),
		write("c.calc", "pow(2, 8)"),
	}

	results, err := EvalFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, paths[0], results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2.0, results[0].Value)

	assert.ErrorIs(t, results[1].Err, vm.ErrDivisionByZero)

	assert.ErrorIs(t, results[2].Err, os.ErrNotExist)

	assert.NoError(t, results[3].Err)
	assert.Equal(t, 256.0, results[3].Value)
}

func TestEvalFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EvalFiles(ctx, []string{"x.calc", "y.calc"})
	assert.ErrorIs(t, err, context.Canceled)
}
