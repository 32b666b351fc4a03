package wallet

import "testing"

func TestDetectChain(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"0x71C7656EC7ab88b098defB751B7401B5f6d8976F", "ethereum"},
		{"7EYnhQoR9YM3N7UoaKRoA44Uy8JeaZV3qyouov87awMs", "solana"},
		{"cosmos1vlthgax23ca9syk7xgaz347xmf4nunefw3cnt8", "cosmos"},
		{"", "unknown"},
		{"0xdeadbeef", "unknown"},
	}
	for _, tc := range cases {
		if got := DetectChain(tc.address); got != tc.want {
			t.Errorf("DetectChain(%q) = %s, want %s", tc.address, got, tc.want)
		}
	}
}

func TestChainInfoDefaultsToEthereum(t *testing.T) {
	if got := ChainInfo("near"); got.ID != "ethereum" {
		t.Errorf("unknown id should default to ethereum, got %s", got.ID)
	}
	if got := ChainInfo("cosmos"); got.Name != "Cosmos" {
		t.Errorf("lookup failed: %+v", got)
	}
}

func TestShortenAddress(t *testing.T) {
	if got := ShortenAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"); got != "0x71C7...976F" {
		t.Errorf("got %s", got)
	}
	if got := ShortenAddress("0xshort"); got != "0xshort" {
		t.Errorf("short addresses should pass through, got %s", got)
	}
}

func TestFamily(t *testing.T) {
	cases := map[Type]Family{
		MetaMask:      FamilyEthereum,
		WalletConnect: FamilyEthereum,
		Coinbase:      FamilyEthereum,
		Phantom:       FamilySolana,
		Keplr:         FamilyCosmos,
	}
	for typ, want := range cases {
		if got := typ.Family(); got != want {
			t.Errorf("%s.Family() = %s, want %s", typ, got, want)
		}
	}
}

func TestIsRejection(t *testing.T) {
	cases := []struct {
		err  *rpcError
		want bool
	}{
		{&rpcError{Code: 4001, Message: "User rejected the request."}, true},
		{&rpcError{Code: -32000, Message: "User denied message signature"}, true},
		{&rpcError{Code: -32603, Message: "internal error"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := isRejection(tc.err); got != tc.want {
			t.Errorf("isRejection(%+v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
