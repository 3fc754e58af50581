package model

import "testing"

func TestMoveType_String(t *testing.T) {
	tests := []struct {
		moveType MoveType
		want     string
	}{
		{MoveChange, "change"},
		{MoveSwap, "swap"},
		{MoveBlockSwap, "block_swap"},
		{MoveRuinAndRecreate, "ruin_and_recreate"},
		{MoveFixShiftRotation, "fix_shift_rotation"},
		{MoveType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.moveType.String(); got != tt.want {
			t.Errorf("MoveType(%d).String() = %q, want %q", tt.moveType, got, tt.want)
		}
	}
}

func TestMove_IsNoOp(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want bool
	}{
		{"同值改写", NewChange(0, 1, 2, 2), true},
		{"异值改写", NewChange(0, 1, 2, 0), false},
		{"同格交换", NewSwap(1, 3, 2, 1, 3, 2), true},
		{"异格交换", NewSwap(1, 3, 2, 2, 3, 0), false},
		{"同员工块交换", Move{Type: MoveBlockSwap, Employee1: 1, Employee2: 1, BlockSize: 2}, true},
		{"正常块交换", Move{Type: MoveBlockSwap, Employee1: 1, Employee2: 2, BlockSize: 2}, false},
		{"毁坏重建", Move{Type: MoveRuinAndRecreate, Employee1: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.move.IsNoOp(); got != tt.want {
				t.Errorf("IsNoOp() = %v, want %v", got, tt.want)
			}
		})
	}
}
