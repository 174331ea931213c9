// Package plan turns a planning request into packer inputs. It resolves named
// container presets and truck classes against the catalog, picks the weight
// budget, runs the packer and reports the outcome with metrics and logs.
package plan
