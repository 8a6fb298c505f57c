package assets

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// DumpDebug writes the cache contents and the registries in a tabular form.
func (m *Manager) DumpDebug(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TYPE\tKEY\tID\tREFS\tSTATE\tSOURCE")
	for ix, c := range m.assetCache {
		t := Type(1) << ix
		c.Range(func(key string, b Bundle) bool {
			for _, a := range b.contents {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					t, key, core.ShortIdentifier(a.ID()), a.RefCount(), a.State(), a.Source())
			}
			return true
		})
	}

	fmt.Fprintln(tw, "\nGPU\tKEY\tID\tHANDLE\t\t")
	for ix, c := range m.gpuCache {
		t := Type(1) << ix
		c.Range(func(a Asset, g GPUObject) bool {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t\n",
				t, a.CacheKey(), core.ShortIdentifier(a.ID()), core.ShortIdentifier(g.GPUHandle()))
			return true
		})
	}

	m.registryMu.RLock()
	fmt.Fprintln(tw, "\nLOADER\tEXTENSIONS\tTYPES\t\t\t")
	for _, l := range m.loaders {
		fmt.Fprintf(tw, "%T\t%v\t%s\t\t\t\n", l, l.Extensions(), l.SupportedTypes())
	}
	fmt.Fprintln(tw, "\nWRITER\tTYPE\tEXTENSION\t\t\t")
	m.writersByTypeExt.Range(func(k writerKey, wr Writer) bool {
		fmt.Fprintf(tw, "%T\t%s\t%s\t\t\t\n", wr, k.typ, k.ext)
		return true
	})
	m.registryMu.RUnlock()

	return tw.Flush()
}
