package config

// chainNames maps chain IDs to their names
var chainNames = map[int]string{
	137:   "POLYGON",
	80002: "AMOY",
}

// collateralAddresses maps chain IDs to the USDC collateral contract addresses
// markets on that chain settle in
var collateralAddresses = map[int]string{
	137:   "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
	80002: "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582",
}

// conditionalTokensAddresses maps chain IDs to the conditional tokens framework
// contract that custodies outcome shares
var conditionalTokensAddresses = map[int]string{
	137:   "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045",
	80002: "0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB",
}

// GetChainName returns the name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// GetCollateralAddress returns the USDC collateral contract address for a given chain ID
func GetCollateralAddress(chainID int) string {
	address, exists := collateralAddresses[chainID]
	if !exists {
		return ""
	}
	return address
}

// GetConditionalTokensAddress returns the conditional tokens contract address for a given chain ID
func GetConditionalTokensAddress(chainID int) string {
	address, exists := conditionalTokensAddresses[chainID]
	if !exists {
		return ""
	}
	return address
}
