package version

var (
	Current   = Version{0, 1, 0, ""}
	Copyright = "Copyright (c) 2021 Andreas T Jonsson"
	Hash      = ""
)
