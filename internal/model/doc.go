// Package model defines the core data structures used throughout
// geodata-downloader.
//
// # Template
//
// Template is the naming convention of a dataset variable. It turns a time
// token into a remote URL and a local file name:
//
//	t := model.Template{Host: "downloads.psl.noaa.gov", Root: model.DefaultRoot,
//	    Dataset: "ncep.reanalysis.dailyavgs", Category: "surface",
//	    VariablePrefix: "air.sig995.", Suffix: ".nc"}
//	t.URL("1965")       // .../Datasets/ncep.reanalysis.dailyavgs/surface/air.sig995.1965.nc
//	t.LocalName("1965") // air.sig995.1965.nc
//
// # Results
//
// Item pairs a URL with its local artifact. Result records what happened to
// an Item: Pending, then Fetched, Skipped or Failed with an ErrorKind.
package model
