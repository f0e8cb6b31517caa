// Package yamlcfg provides the YAML implementation of catalog.Loader. JSON
// files are accepted too, since the YAML decoder reads JSON documents.
//
// A catalog document holds four optional top-level lists:
//
//	indicators:
//	  - data_path: stockDayKBar
//	    frequency: daily
//	    location: {namespace: "dfs://Daykbar", table: pt}
//	    keys: {symbol: symbol, date: TradeDate}
//	    columns: {close: close, volume: vol}
//	classes:
//	  - name: momentum
//	    prepare: [momentumPrepare]
//	functions:
//	  - name: get_momentum
//	    kind: compute
//	    signature: params
//	factors:
//	  - name: momentum_20
//	    class: momentum
//	    compute: get_momentum
//	    frequency: daily
//	    depends_on: {intermediate: [rolling_window]}
//	    sources:
//	      - data_path: stockDayKBar
//	        indicators: [close]
//	    params: {window: 20}
package yamlcfg
