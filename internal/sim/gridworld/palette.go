package gridworld

import "stalkercraft.ai/internal/sim/stalker/kernel/model"

// Palette entries. Hardness values follow the usual block table.
var (
	Air      = model.BlockState{ID: "minecraft:air"}
	CaveAir  = model.BlockState{ID: "minecraft:cave_air"}
	Stone    = model.BlockState{ID: "minecraft:stone", Hardness: 1.5, Solid: true}
	Dirt     = model.BlockState{ID: "minecraft:dirt", Hardness: 0.5, Solid: true}
	Grass    = model.BlockState{ID: "minecraft:grass_block", Hardness: 0.6, Solid: true}
	Bedrock  = model.BlockState{ID: "minecraft:bedrock", Hardness: -1, Solid: true}
	Obsidian = model.BlockState{ID: "minecraft:obsidian", Hardness: 50, Solid: true}
	Planks   = model.BlockState{ID: "minecraft:oak_planks", Hardness: 2, Solid: true}
	Glass    = model.BlockState{ID: "minecraft:glass", Hardness: 0.3, Solid: true}
	Water    = model.BlockState{ID: "minecraft:water", Hardness: 100, Liquid: true}
	Leaves   = model.BlockState{ID: "minecraft:oak_leaves", Hardness: 0.2, Solid: true, Category: model.BlockFoliage}
	Torch    = model.BlockState{ID: "minecraft:torch"}
	Barrier  = model.BlockState{ID: "minecraft:barrier", Hardness: -1, Solid: true}
	Wall     = model.BlockState{ID: "minecraft:cobblestone_wall", Hardness: 2, Solid: true, Category: model.BlockWall}
	Door     = model.BlockState{ID: "minecraft:oak_door", Hardness: 3, Solid: true, Openable: true, Category: model.BlockDoor}
	Gate     = model.BlockState{ID: "minecraft:oak_fence_gate", Hardness: 2, Solid: true, Openable: true, Category: model.BlockGate}
	Trapdoor = model.BlockState{ID: "minecraft:oak_trapdoor", Hardness: 3, Solid: true, Openable: true, Category: model.BlockTrapdoor}
)

// torchLight is the block light a torch emits at its own cell.
const torchLight = 14

func emits(bs model.BlockState) int {
	if bs.ID == Torch.ID {
		return torchLight
	}
	return 0
}

// withOpen returns bs toggled open or closed; open blocks stop blocking movement.
func withOpen(bs model.BlockState, open bool) model.BlockState {
	if !bs.Openable {
		return bs
	}
	bs.Open = open
	bs.Solid = !open
	return bs
}
