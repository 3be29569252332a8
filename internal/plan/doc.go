// Package plan turns a table into an ordered list of fetch tasks.
//
// The [Builder] visits cells row by row. Locator cells are checked against
// the workspace bucket and the storage backend, and every object that exists
// becomes a [Task] with a deterministic destination:
//
//	{dir}/{row}/{column}/{object}           single locator
//	{dir}/{row}/{column}/{index}/{object}   element of a locator list
//
// Plain values are written immediately to {dir}/{row}/{column}/{column}.txt,
// one value per line. The resulting [Plan] carries the tasks, their total
// size, and one [Disposition] per cell or list element.
package plan
