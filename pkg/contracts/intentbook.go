package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// IntentBookABI is the ABI of the IntentBook contract
const IntentBookABI = `[
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "solver",
				"type": "address"
			}
		],
		"name": "pendingIntents",
		"outputs": [
			{
				"internalType": "bytes32[]",
				"name": "",
				"type": "bytes32[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "bytes32",
				"name": "intentId",
				"type": "bytes32"
			}
		],
		"name": "getIntent",
		"outputs": [
			{
				"components": [
					{
						"internalType": "address",
						"name": "user",
						"type": "address"
					},
					{
						"internalType": "bytes32",
						"name": "marketId",
						"type": "bytes32"
					},
					{
						"internalType": "bytes32",
						"name": "conditionId",
						"type": "bytes32"
					},
					{
						"internalType": "uint8",
						"name": "kind",
						"type": "uint8"
					},
					{
						"internalType": "uint8",
						"name": "outcome",
						"type": "uint8"
					},
					{
						"internalType": "uint256",
						"name": "amount",
						"type": "uint256"
					},
					{
						"internalType": "int64",
						"name": "maxPrice",
						"type": "int64"
					},
					{
						"internalType": "int64",
						"name": "minPrice",
						"type": "int64"
					},
					{
						"internalType": "uint64",
						"name": "deadline",
						"type": "uint64"
					},
					{
						"internalType": "uint8",
						"name": "orderStyle",
						"type": "uint8"
					},
					{
						"internalType": "bool",
						"name": "exists",
						"type": "bool"
					}
				],
				"internalType": "struct IntentBook.Intent",
				"name": "",
				"type": "tuple"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "address",
				"name": "solver",
				"type": "address"
			}
		],
		"name": "isSolverRegistered",
		"outputs": [
			{
				"internalType": "bool",
				"name": "",
				"type": "bool"
			}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{
				"internalType": "bytes32",
				"name": "intentId",
				"type": "bytes32"
			},
			{
				"internalType": "bool",
				"name": "success",
				"type": "bool"
			},
			{
				"internalType": "uint256",
				"name": "outputAmount",
				"type": "uint256"
			},
			{
				"internalType": "uint256",
				"name": "feeAmount",
				"type": "uint256"
			},
			{
				"internalType": "string",
				"name": "details",
				"type": "string"
			}
		],
		"name": "settleIntent",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{
				"indexed": true,
				"internalType": "bytes32",
				"name": "intentId",
				"type": "bytes32"
			},
			{
				"indexed": true,
				"internalType": "address",
				"name": "solver",
				"type": "address"
			},
			{
				"indexed": false,
				"internalType": "bool",
				"name": "success",
				"type": "bool"
			}
		],
		"name": "IntentSettled",
		"type": "event"
	}
]`

// IntentBookIntent is an auto generated low-level Go binding around an user-defined struct.
type IntentBookIntent struct {
	User        common.Address
	MarketId    [32]byte
	ConditionId [32]byte
	Kind        uint8
	Outcome     uint8
	Amount      *big.Int
	MaxPrice    int64
	MinPrice    int64
	Deadline    uint64
	OrderStyle  uint8
	Exists      bool
}

// IntentBook is an auto generated Go binding around an Ethereum contract.
type IntentBook struct {
	IntentBookCaller     // Read-only binding to the contract
	IntentBookTransactor // Write-only binding to the contract
	IntentBookFilterer   // Log filterer for contract events
}

// IntentBookCaller is an auto generated read-only Go binding around an Ethereum contract.
type IntentBookCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// IntentBookTransactor is an auto generated write-only Go binding around an Ethereum contract.
type IntentBookTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// IntentBookFilterer is an auto generated log filtering Go binding around an Ethereum contract events.
type IntentBookFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// IntentBookSession is an auto generated Go binding around an Ethereum contract,
// with pre-set call and transact options.
type IntentBookSession struct {
	Contract     *IntentBook       // Generic contract binding to set the session for
	CallOpts     bind.CallOpts     // Call options to use throughout this session
	TransactOpts bind.TransactOpts // Transaction auth options to use throughout this session
}

// IntentBookCallerSession is an auto generated read-only Go binding around an Ethereum contract,
// with pre-set call options.
type IntentBookCallerSession struct {
	Contract *IntentBookCaller // Generic contract caller binding to set the session for
	CallOpts bind.CallOpts     // Call options to use throughout this session
}

// IntentBookTransactorSession is an auto generated write-only Go binding around an Ethereum contract,
// with pre-set transact options.
type IntentBookTransactorSession struct {
	Contract     *IntentBookTransactor // Generic contract transactor binding to set the session for
	TransactOpts bind.TransactOpts     // Transaction auth options to use throughout this session
}

// IntentBookRaw is an auto generated low-level Go binding around an Ethereum contract.
type IntentBookRaw struct {
	Contract *IntentBook // Generic contract binding to access the raw methods on
}

// IntentBookCallerRaw is an auto generated low-level read-only Go binding around an Ethereum contract.
type IntentBookCallerRaw struct {
	Contract *IntentBookCaller // Generic read-only contract binding to access the raw methods on
}

// IntentBookTransactorRaw is an auto generated low-level write-only Go binding around an Ethereum contract.
type IntentBookTransactorRaw struct {
	Contract *IntentBookTransactor // Generic write-only contract binding to access the raw methods on
}

// NewIntentBook creates a new instance of IntentBook, bound to a specific deployed contract.
func NewIntentBook(address common.Address, backend bind.ContractBackend) (*IntentBook, error) {
	contract, err := bindIntentBook(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &IntentBook{IntentBookCaller: IntentBookCaller{contract: contract}, IntentBookTransactor: IntentBookTransactor{contract: contract}, IntentBookFilterer: IntentBookFilterer{contract: contract}}, nil
}

// NewIntentBookCaller creates a new read-only instance of IntentBook, bound to a specific deployed contract.
func NewIntentBookCaller(address common.Address, caller bind.ContractCaller) (*IntentBookCaller, error) {
	contract, err := bindIntentBook(address, caller, nil, nil)
	if err != nil {
		return nil, err
	}
	return &IntentBookCaller{contract: contract}, nil
}

// NewIntentBookTransactor creates a new write-only instance of IntentBook, bound to a specific deployed contract.
func NewIntentBookTransactor(address common.Address, transactor bind.ContractTransactor) (*IntentBookTransactor, error) {
	contract, err := bindIntentBook(address, nil, transactor, nil)
	if err != nil {
		return nil, err
	}
	return &IntentBookTransactor{contract: contract}, nil
}

// NewIntentBookFilterer creates a new log filterer instance of IntentBook, bound to a specific deployed contract.
func NewIntentBookFilterer(address common.Address, filterer bind.ContractFilterer) (*IntentBookFilterer, error) {
	contract, err := bindIntentBook(address, nil, nil, filterer)
	if err != nil {
		return nil, err
	}
	return &IntentBookFilterer{contract: contract}, nil
}

// bindIntentBook binds a generic wrapper to an already deployed contract.
func bindIntentBook(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(IntentBookABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, filterer), nil
}

// Call invokes the (constant) contract method with params as input values and
// sets the output to result. The result type might be a single field for simple
// returns, a slice of interfaces for anonymous returns and a struct for named
// returns.
func (_IntentBook *IntentBookRaw) Call(opts *bind.CallOpts, result *[]interface{}, method string, params ...interface{}) error {
	return _IntentBook.Contract.IntentBookCaller.contract.Call(opts, result, method, params...)
}

// Transfer initiates a plain transaction to move funds to the contract, calling
// its default method if one is available.
func (_IntentBook *IntentBookRaw) Transfer(opts *bind.TransactOpts) (*types.Transaction, error) {
	return _IntentBook.Contract.IntentBookTransactor.contract.Transfer(opts)
}

// Transact invokes the (paid) contract method with params as input values.
func (_IntentBook *IntentBookRaw) Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	return _IntentBook.Contract.IntentBookTransactor.contract.Transact(opts, method, params...)
}

// Call invokes the (constant) contract method with params as input values and
// sets the output to result. The result type might be a single field for simple
// returns, a slice of interfaces for anonymous returns and a struct for named
// returns.
func (_IntentBook *IntentBookCallerRaw) Call(opts *bind.CallOpts, result *[]interface{}, method string, params ...interface{}) error {
	return _IntentBook.Contract.contract.Call(opts, result, method, params...)
}

// Transfer initiates a plain transaction to move funds to the contract, calling
// its default method if one is available.
func (_IntentBook *IntentBookTransactorRaw) Transfer(opts *bind.TransactOpts) (*types.Transaction, error) {
	return _IntentBook.Contract.contract.Transfer(opts)
}

// Transact invokes the (paid) contract method with params as input values.
func (_IntentBook *IntentBookTransactorRaw) Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	return _IntentBook.Contract.contract.Transact(opts, method, params...)
}

// PendingIntents is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function pendingIntents(address solver) view returns(bytes32[])
func (_IntentBook *IntentBookCaller) PendingIntents(opts *bind.CallOpts, solver common.Address) ([][32]byte, error) {
	var out []interface{}
	err := _IntentBook.contract.Call(opts, &out, "pendingIntents", solver)

	if err != nil {
		return *new([][32]byte), err
	}

	out0 := *abi.ConvertType(out[0], new([][32]byte)).(*[][32]byte)

	return out0, err
}

// PendingIntents is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function pendingIntents(address solver) view returns(bytes32[])
func (_IntentBook *IntentBookSession) PendingIntents(solver common.Address) ([][32]byte, error) {
	return _IntentBook.Contract.PendingIntents(&_IntentBook.CallOpts, solver)
}

// PendingIntents is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function pendingIntents(address solver) view returns(bytes32[])
func (_IntentBook *IntentBookCallerSession) PendingIntents(solver common.Address) ([][32]byte, error) {
	return _IntentBook.Contract.PendingIntents(&_IntentBook.CallOpts, solver)
}

// GetIntent is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function getIntent(bytes32 intentId) view returns((address,bytes32,bytes32,uint8,uint8,uint256,int64,int64,uint64,uint8,bool))
func (_IntentBook *IntentBookCaller) GetIntent(opts *bind.CallOpts, intentId [32]byte) (IntentBookIntent, error) {
	var out []interface{}
	err := _IntentBook.contract.Call(opts, &out, "getIntent", intentId)

	if err != nil {
		return *new(IntentBookIntent), err
	}

	out0 := *abi.ConvertType(out[0], new(IntentBookIntent)).(*IntentBookIntent)

	return out0, err
}

// GetIntent is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function getIntent(bytes32 intentId) view returns((address,bytes32,bytes32,uint8,uint8,uint256,int64,int64,uint64,uint8,bool))
func (_IntentBook *IntentBookSession) GetIntent(intentId [32]byte) (IntentBookIntent, error) {
	return _IntentBook.Contract.GetIntent(&_IntentBook.CallOpts, intentId)
}

// GetIntent is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function getIntent(bytes32 intentId) view returns((address,bytes32,bytes32,uint8,uint8,uint256,int64,int64,uint64,uint8,bool))
func (_IntentBook *IntentBookCallerSession) GetIntent(intentId [32]byte) (IntentBookIntent, error) {
	return _IntentBook.Contract.GetIntent(&_IntentBook.CallOpts, intentId)
}

// IsSolverRegistered is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function isSolverRegistered(address solver) view returns(bool)
func (_IntentBook *IntentBookCaller) IsSolverRegistered(opts *bind.CallOpts, solver common.Address) (bool, error) {
	var out []interface{}
	err := _IntentBook.contract.Call(opts, &out, "isSolverRegistered", solver)

	if err != nil {
		return *new(bool), err
	}

	out0 := *abi.ConvertType(out[0], new(bool)).(*bool)

	return out0, err
}

// IsSolverRegistered is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function isSolverRegistered(address solver) view returns(bool)
func (_IntentBook *IntentBookSession) IsSolverRegistered(solver common.Address) (bool, error) {
	return _IntentBook.Contract.IsSolverRegistered(&_IntentBook.CallOpts, solver)
}

// IsSolverRegistered is a free data retrieval call binding the contract method 0x12345678.
//
// Solidity: function isSolverRegistered(address solver) view returns(bool)
func (_IntentBook *IntentBookCallerSession) IsSolverRegistered(solver common.Address) (bool, error) {
	return _IntentBook.Contract.IsSolverRegistered(&_IntentBook.CallOpts, solver)
}

// SettleIntent is a paid mutator transaction binding the contract method 0x12345678.
//
// Solidity: function settleIntent(bytes32 intentId, bool success, uint256 outputAmount, uint256 feeAmount, string details) returns()
func (_IntentBook *IntentBookTransactor) SettleIntent(opts *bind.TransactOpts, intentId [32]byte, success bool, outputAmount *big.Int, feeAmount *big.Int, details string) (*types.Transaction, error) {
	return _IntentBook.contract.Transact(opts, "settleIntent", intentId, success, outputAmount, feeAmount, details)
}

// SettleIntent is a paid mutator transaction binding the contract method 0x12345678.
//
// Solidity: function settleIntent(bytes32 intentId, bool success, uint256 outputAmount, uint256 feeAmount, string details) returns()
func (_IntentBook *IntentBookSession) SettleIntent(intentId [32]byte, success bool, outputAmount *big.Int, feeAmount *big.Int, details string) (*types.Transaction, error) {
	return _IntentBook.Contract.SettleIntent(&_IntentBook.TransactOpts, intentId, success, outputAmount, feeAmount, details)
}

// SettleIntent is a paid mutator transaction binding the contract method 0x12345678.
//
// Solidity: function settleIntent(bytes32 intentId, bool success, uint256 outputAmount, uint256 feeAmount, string details) returns()
func (_IntentBook *IntentBookTransactorSession) SettleIntent(intentId [32]byte, success bool, outputAmount *big.Int, feeAmount *big.Int, details string) (*types.Transaction, error) {
	return _IntentBook.Contract.SettleIntent(&_IntentBook.TransactOpts, intentId, success, outputAmount, feeAmount, details)
}

// IntentBookIntentSettledIterator is returned from FilterIntentSettled and is used to iterate over the raw logs and unpacked data for IntentSettled events raised by the IntentBook contract.
type IntentBookIntentSettledIterator struct {
	Event *IntentBookIntentSettled // Event containing the contract specifics and raw log

	contract *bind.BoundContract // Generic contract to use for unpacking event data
	event    string              // Event name to use for unpacking event data

	logs chan types.Log        // Log channel receiving the found contract events
	sub  ethereum.Subscription // Subscription for errors, completion and termination
	done bool                  // Whether the subscription completed delivering logs
	fail error                 // Occurred error to stop iteration
}

// Next advances the iterator to the subsequent event, returning whether there
// are any more events found. In case of a retrieval or parsing error, false is
// returned and Error() can be queried for the exact failure.
func (it *IntentBookIntentSettledIterator) Next() bool {
	// If the iterator failed, stop iterating
	if it.fail != nil {
		return false
	}
	// If the iterator completed, deliver directly whatever's available
	if it.done {
		select {
		case log := <-it.logs:
			it.Event = new(IntentBookIntentSettled)
			if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
				it.fail = err
				return false
			}
			it.Event.Raw = log
			return true

		default:
			return false
		}
	}
	// Iterator still in progress, wait for either a data or an error event
	select {
	case log := <-it.logs:
		it.Event = new(IntentBookIntentSettled)
		if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
			it.fail = err
			return false
		}
		it.Event.Raw = log
		return true

	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

// Error returns any retrieval or parsing error occurred during filtering.
func (it *IntentBookIntentSettledIterator) Error() error {
	return it.fail
}

// Close terminates the iteration process, releasing any pending underlying
// resources.
func (it *IntentBookIntentSettledIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// IntentBookIntentSettled represents a IntentSettled event raised by the IntentBook contract.
type IntentBookIntentSettled struct {
	IntentId [32]byte
	Solver   common.Address
	Success  bool
	Raw      types.Log // Blockchain specific contextual infos
}

// FilterIntentSettled is a free log retrieval operation binding the contract event 0x12345678.
//
// Solidity: event IntentSettled(bytes32 indexed intentId, address indexed solver, bool success)
func (_IntentBook *IntentBookFilterer) FilterIntentSettled(opts *bind.FilterOpts, intentId [][32]byte, solver []common.Address) (*IntentBookIntentSettledIterator, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var solverRule []interface{}
	for _, solverItem := range solver {
		solverRule = append(solverRule, solverItem)
	}

	logs, sub, err := _IntentBook.contract.FilterLogs(opts, "IntentSettled", intentIdRule, solverRule)
	if err != nil {
		return nil, err
	}
	return &IntentBookIntentSettledIterator{contract: _IntentBook.contract, event: "IntentSettled", logs: logs, sub: sub}, nil
}

// WatchIntentSettled is a free log subscription operation binding the contract event 0x12345678.
//
// Solidity: event IntentSettled(bytes32 indexed intentId, address indexed solver, bool success)
func (_IntentBook *IntentBookFilterer) WatchIntentSettled(opts *bind.WatchOpts, sink chan<- *IntentBookIntentSettled, intentId [][32]byte, solver []common.Address) (event.Subscription, error) {
	var intentIdRule []interface{}
	for _, intentIdItem := range intentId {
		intentIdRule = append(intentIdRule, intentIdItem)
	}
	var solverRule []interface{}
	for _, solverItem := range solver {
		solverRule = append(solverRule, solverItem)
	}

	logs, sub, err := _IntentBook.contract.WatchLogs(opts, "IntentSettled", intentIdRule, solverRule)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				// New log arrived, parse the event and forward to the user
				event := new(IntentBookIntentSettled)
				if err := _IntentBook.contract.UnpackLog(event, "IntentSettled", log); err != nil {
					return err
				}
				event.Raw = log

				select {
				case sink <- event:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// ParseIntentSettled is a log parse operation binding the contract event 0x12345678.
//
// Solidity: event IntentSettled(bytes32 indexed intentId, address indexed solver, bool success)
func (_IntentBook *IntentBookFilterer) ParseIntentSettled(log types.Log) (*IntentBookIntentSettled, error) {
	event := new(IntentBookIntentSettled)
	if err := _IntentBook.contract.UnpackLog(event, "IntentSettled", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
