// Package omnisearch embeds the ledger explorer search engine: it decides whether free-form
// input names an address, an object or a transaction, previews every category as the user
// types, and resolves a submitted query to exactly one explorer route.
//
// # One-shot lookups
//
//	client, _ := omnisearch.New(ctx,
//	    omnisearch.WithNetwork("mainnet", "https://fullnode.mainnet.sui.io:443"),
//	    omnisearch.WithCache(5*time.Minute),
//	)
//	defer client.Close()
//
//	items, _ := client.Preview(ctx, "0x5")
//	target, _ := client.Resolve(ctx, "0xCAFE") // matched, fallback or not_found
//
// # Interactive sessions
//
//	s, _ := client.NewSession(ctx)
//	<-s.TextChanged(ctx, "0x5")  // preview published unless a newer input arrived
//	target, err := s.Submit(ctx) // ErrPending while a previous submit is settling
package omnisearch
