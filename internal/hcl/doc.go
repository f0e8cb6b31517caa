// Package hcl provides the HCL implementation of catalog.Loader. It is
// responsible for file discovery, parsing, HCL-to-catalog translation, and
// CTY-to-Go conversion of opaque factor parameters.
//
// A catalog file may contain any mix of indicator, class, function and
// factor blocks:
//
//	indicator "stockDayKBar" {
//	  frequency = "daily"
//	  location {
//	    namespace = "dfs://Daykbar"
//	    table     = "pt"
//	  }
//	  keys {
//	    symbol = "symbol"
//	    date   = "TradeDate"
//	  }
//	  columns = { close = "close", volume = "vol" }
//	}
//
//	class "momentum" {
//	  prepare = ["momentumPrepare"]
//	}
//
//	function "get_momentum" {
//	  kind      = "compute"
//	  signature = "params"
//	}
//
//	factor "momentum_20" {
//	  class     = "momentum"
//	  compute   = "get_momentum"
//	  frequency = "daily"
//	  depends_on {
//	    factors      = []
//	    intermediate = ["rolling_window"]
//	  }
//	  source "stockDayKBar" {
//	    indicators = ["close"]
//	  }
//	  params = { window = 20 }
//	}
package hcl
