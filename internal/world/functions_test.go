package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterProgram = `use anchor_lang::prelude::*;

declare_id!("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS");

#[program]
pub mod counter_anchor {
    use super::*;

    pub fn initialize(ctx: Context<Initialize>) -> Result<()> {
        ctx.accounts.counter.count = 0;
        Ok(())
    }

    pub fn increment(ctx: Context<Increment>) -> Result<()> {
        ctx.accounts.counter.count += 1;
        Ok(())
    }
}

fn helper() -> u64 {
    42
}

mod utils {
    pub fn unrelated() {}
}
`

func names(fns []Function) []string {
	out := make([]string, len(fns))
	for i, fn := range fns {
		out[i] = fn.Name
	}
	return out
}

func TestExtractFunctions_All(t *testing.T) {
	fns, err := ExtractFunctions(context.Background(), []byte(counterProgram), AllFunctions)
	require.NoError(t, err)
	assert.Equal(t, []string{"helper", "increment", "initialize", "unrelated"}, names(fns))
}

func TestExtractFunctions_ProgramOnly(t *testing.T) {
	fns, err := ExtractFunctions(context.Background(), []byte(counterProgram), ProgramFunctions)
	require.NoError(t, err)
	assert.Equal(t, []string{"increment", "initialize"}, names(fns))
}

func TestExtractFunctions_Positions(t *testing.T) {
	fns, err := ExtractFunctions(context.Background(), []byte(counterProgram), AllFunctions)
	require.NoError(t, err)

	var helper Function
	for _, fn := range fns {
		if fn.Name == "helper" {
			helper = fn
		}
	}
	require.Equal(t, "helper", helper.Name)
	assert.Equal(t, Position{Row: 19, Column: 0}, helper.Start)
	assert.Equal(t, Position{Row: 21, Column: 1}, helper.End)
	assert.Equal(t, "20:1", helper.Start.String())
}

func TestExtractFunctions_NativeHasNoProgramModule(t *testing.T) {
	src := `entrypoint!(process_instruction);

pub fn process_instruction(program_id: &Pubkey, accounts: &[AccountInfo], data: &[u8]) -> ProgramResult {
    Ok(())
}
`
	fns, err := ExtractFunctions(context.Background(), []byte(src), ProgramFunctions)
	require.NoError(t, err)
	assert.Empty(t, fns)

	fns, err = ExtractFunctions(context.Background(), []byte(src), AllFunctions)
	require.NoError(t, err)
	assert.Equal(t, []string{"process_instruction"}, names(fns))
}

func TestExtractFunctions_OtherAttributeIgnored(t *testing.T) {
	src := `#[cfg(test)]
mod tests {
    fn it_works() {}
}
`
	fns, err := ExtractFunctions(context.Background(), []byte(src), ProgramFunctions)
	require.NoError(t, err)
	assert.Empty(t, fns)
}

func TestExtractFunctionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte(counterProgram), 0o644))

	fns, err := ExtractFunctionsFile(context.Background(), path, ProgramFunctions)
	require.NoError(t, err)
	assert.Len(t, fns, 2)

	_, err = ExtractFunctionsFile(context.Background(), filepath.Join(t.TempDir(), "missing.rs"), AllFunctions)
	assert.Error(t, err)
}
