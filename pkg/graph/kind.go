package graph

import (
	"path/filepath"
	"strings"
)

// ClassifyPath infers an asset kind from the file extension. Unrecognized
// extensions stay AssetUnknown; the watcher or loader can refine the kind
// later via SetNodeInfo.
func ClassifyPath(path string) AssetKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".metal", ".glsl", ".hlsl", ".vert", ".frag", ".comp", ".shader":
		return AssetShader
	case ".png", ".jpg", ".jpeg", ".tga", ".ktx", ".dds", ".bmp":
		return AssetTexture
	case ".json", ".yaml", ".yml", ".toml", ".ini", ".cfg":
		return AssetConfig
	case ".dylib", ".so", ".dll", ".wasm":
		return AssetModule
	case ".bin", ".dat", ".pak":
		return AssetData
	default:
		return AssetUnknown
	}
}
