package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// GreenTokenABI covers the ERC-20 surface plus the fixed-rate purchase
// entrypoint of the GreenLoop token contract.
const GreenTokenABI = `[
  {
    "inputs": [{"internalType": "address", "name": "account", "type": "address"}],
    "name": "balanceOf",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "tokensPerEth",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "buyTokens",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "spender", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "approve",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "transfer",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}],
    "name": "burn",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "mint",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_cap", "type": "uint256"}],
    "name": "setCap",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_tokensPerEth", "type": "uint256"}],
    "name": "setTokenPrice",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "ethAmount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "tokenAmount", "type": "uint256"}
    ],
    "name": "TokensPurchased",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

// MarketplaceABI covers product listing, escrowed purchases, and exchange
// offers.
const MarketplaceABI = `[
  {
    "inputs": [],
    "name": "productCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_productId", "type": "uint256"}],
    "name": "getProduct",
    "outputs": [
      {"internalType": "uint256", "name": "id", "type": "uint256"},
      {"internalType": "address", "name": "seller", "type": "address"},
      {"internalType": "uint256", "name": "tokenPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "ethPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "quantity", "type": "uint256"},
      {"internalType": "uint256", "name": "availableQuantity", "type": "uint256"},
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "description", "type": "string"},
      {"internalType": "string", "name": "size", "type": "string"},
      {"internalType": "string", "name": "condition", "type": "string"},
      {"internalType": "string", "name": "brand", "type": "string"},
      {"internalType": "string", "name": "categories", "type": "string"},
      {"internalType": "string", "name": "gender", "type": "string"},
      {"internalType": "string", "name": "image", "type": "string"},
      {"internalType": "bool", "name": "isAvailableForExchange", "type": "bool"},
      {"internalType": "string", "name": "exchangePreference", "type": "string"},
      {"internalType": "bool", "name": "isSold", "type": "bool"},
      {"internalType": "bool", "name": "isDeleted", "type": "bool"},
      {"internalType": "uint256", "name": "listedAt", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_tokenPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "_ethPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "_quantity", "type": "uint256"},
      {"internalType": "string", "name": "_name", "type": "string"},
      {"internalType": "string", "name": "_description", "type": "string"},
      {"internalType": "string", "name": "_size", "type": "string"},
      {"internalType": "string", "name": "_condition", "type": "string"},
      {"internalType": "string", "name": "_brand", "type": "string"},
      {"internalType": "string", "name": "_categories", "type": "string"},
      {"internalType": "string", "name": "_gender", "type": "string"},
      {"internalType": "string", "name": "_image", "type": "string"},
      {"internalType": "bool", "name": "_isAvailableForExchange", "type": "bool"},
      {"internalType": "string", "name": "_exchangePreference", "type": "string"}
    ],
    "name": "createProduct",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_productId", "type": "uint256"},
      {"internalType": "uint256", "name": "_quantity", "type": "uint256"}
    ],
    "name": "purchaseProductWithToken",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_productId", "type": "uint256"},
      {"internalType": "uint256", "name": "_quantity", "type": "uint256"}
    ],
    "name": "purchaseProductWithEth",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_productId", "type": "uint256"},
      {"internalType": "uint256", "name": "_tokenPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "_ethPrice", "type": "uint256"},
      {"internalType": "string", "name": "_name", "type": "string"},
      {"internalType": "string", "name": "_description", "type": "string"},
      {"internalType": "string", "name": "_image", "type": "string"}
    ],
    "name": "updateProduct",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_productId", "type": "uint256"},
      {"internalType": "uint256", "name": "_quantity", "type": "uint256"}
    ],
    "name": "updateProductQuantity",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_productId", "type": "uint256"}],
    "name": "deleteProduct",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "escrowCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_escrowId", "type": "uint256"}],
    "name": "getEscrow",
    "outputs": [
      {"internalType": "uint256", "name": "id", "type": "uint256"},
      {"internalType": "uint256", "name": "productId", "type": "uint256"},
      {"internalType": "address", "name": "buyer", "type": "address"},
      {"internalType": "address", "name": "seller", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "uint256", "name": "quantity", "type": "uint256"},
      {"internalType": "bool", "name": "buyerConfirmed", "type": "bool"},
      {"internalType": "bool", "name": "sellerConfirmed", "type": "bool"},
      {"internalType": "bool", "name": "completed", "type": "bool"},
      {"internalType": "bool", "name": "refunded", "type": "bool"},
      {"internalType": "bool", "name": "isToken", "type": "bool"},
      {"internalType": "bool", "name": "isExchange", "type": "bool"},
      {"internalType": "uint256", "name": "exchangeProductId", "type": "uint256"},
      {"internalType": "uint256", "name": "tokenTopUp", "type": "uint256"},
      {"internalType": "bool", "name": "rejected", "type": "bool"},
      {"internalType": "string", "name": "rejectionReason", "type": "string"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_escrowId", "type": "uint256"}],
    "name": "confirmEscrowBuyer",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_escrowId", "type": "uint256"}],
    "name": "confirmEscrowSeller",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_escrowId", "type": "uint256"}],
    "name": "cancelEscrow",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_escrowId", "type": "uint256"},
      {"internalType": "string", "name": "_reason", "type": "string"}
    ],
    "name": "rejectEscrow",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_escrowId", "type": "uint256"}],
    "name": "refundExpiredEscrow",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "exchangeOfferCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_offerId", "type": "uint256"}],
    "name": "getExchangeOffer",
    "outputs": [
      {"internalType": "uint256", "name": "id", "type": "uint256"},
      {"internalType": "uint256", "name": "offeredProductId", "type": "uint256"},
      {"internalType": "uint256", "name": "wantedProductId", "type": "uint256"},
      {"internalType": "address", "name": "offerer", "type": "address"},
      {"internalType": "bool", "name": "isActive", "type": "bool"},
      {"internalType": "uint256", "name": "tokenTopUp", "type": "uint256"},
      {"internalType": "uint256", "name": "escrowId", "type": "uint256"},
      {"internalType": "uint256", "name": "createdAt", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_offeredProductId", "type": "uint256"},
      {"internalType": "uint256", "name": "_wantedProductId", "type": "uint256"},
      {"internalType": "uint256", "name": "_tokenTopUp", "type": "uint256"}
    ],
    "name": "createExchangeOffer",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_offerId", "type": "uint256"}],
    "name": "acceptExchangeOffer",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_offerId", "type": "uint256"}],
    "name": "cancelExchangeOffer",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "productId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "seller", "type": "address"}
    ],
    "name": "ProductCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"},
      {"indexed": true, "internalType": "uint256", "name": "productId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "quantity", "type": "uint256"}
    ],
    "name": "EscrowCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "byBuyer", "type": "bool"}
    ],
    "name": "EscrowConfirmed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"}],
    "name": "EscrowCompleted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"}],
    "name": "EscrowRefunded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "reason", "type": "string"}
    ],
    "name": "EscrowRejected",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "offerId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"}
    ],
    "name": "ExchangeOfferCreated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "offerId", "type": "uint256"},
      {"indexed": true, "internalType": "uint256", "name": "escrowId", "type": "uint256"}
    ],
    "name": "ExchangeOfferAccepted",
    "type": "event"
  }
]`

// DonationABI covers donation centers, pending donations, and recycling.
const DonationABI = `[
  {
    "inputs": [],
    "name": "centerCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_centerId", "type": "uint256"}],
    "name": "getCenter",
    "outputs": [
      {"internalType": "uint256", "name": "id", "type": "uint256"},
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "description", "type": "string"},
      {"internalType": "string", "name": "location", "type": "string"},
      {"internalType": "bool", "name": "isActive", "type": "bool"},
      {"internalType": "bool", "name": "acceptsTokens", "type": "bool"},
      {"internalType": "bool", "name": "acceptsRecycling", "type": "bool"},
      {"internalType": "bool", "name": "isDonation", "type": "bool"},
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "uint256", "name": "totalItems", "type": "uint256"},
      {"internalType": "uint256", "name": "totalRecyclingWeight", "type": "uint256"},
      {"internalType": "uint256", "name": "totalTokensReceived", "type": "uint256"},
      {"internalType": "string", "name": "website", "type": "string"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "_name", "type": "string"},
      {"internalType": "string", "name": "_description", "type": "string"},
      {"internalType": "string", "name": "_location", "type": "string"},
      {"internalType": "bool", "name": "_acceptsTokens", "type": "bool"},
      {"internalType": "bool", "name": "_acceptsRecycling", "type": "bool"},
      {"internalType": "bool", "name": "_isDonation", "type": "bool"},
      {"internalType": "string", "name": "_website", "type": "string"}
    ],
    "name": "registerCenter",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_centerId", "type": "uint256"},
      {"internalType": "bool", "name": "_isActive", "type": "bool"},
      {"internalType": "bool", "name": "_acceptsTokens", "type": "bool"},
      {"internalType": "bool", "name": "_acceptsRecycling", "type": "bool"},
      {"internalType": "string", "name": "_website", "type": "string"}
    ],
    "name": "updateCenter",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "pendingDonationCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_donationId", "type": "uint256"}],
    "name": "getPendingDonation",
    "outputs": [
      {"internalType": "uint256", "name": "id", "type": "uint256"},
      {"internalType": "address", "name": "donor", "type": "address"},
      {"internalType": "uint256", "name": "itemCount", "type": "uint256"},
      {"internalType": "string", "name": "itemType", "type": "string"},
      {"internalType": "string", "name": "description", "type": "string"},
      {"internalType": "uint256", "name": "timestamp", "type": "uint256"},
      {"internalType": "bool", "name": "isRecycling", "type": "bool"},
      {"internalType": "bool", "name": "isTokenDonation", "type": "bool"},
      {"internalType": "uint256", "name": "weightInKg", "type": "uint256"},
      {"internalType": "uint256", "name": "tokenAmount", "type": "uint256"},
      {"internalType": "uint256", "name": "centerId", "type": "uint256"},
      {"internalType": "bool", "name": "isApproved", "type": "bool"},
      {"internalType": "bool", "name": "isProcessed", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_centerId", "type": "uint256"},
      {"internalType": "uint256", "name": "_itemCount", "type": "uint256"},
      {"internalType": "string", "name": "_itemType", "type": "string"},
      {"internalType": "string", "name": "_description", "type": "string"}
    ],
    "name": "submitDonation",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_centerId", "type": "uint256"},
      {"internalType": "uint256", "name": "_weightInKg", "type": "uint256"},
      {"internalType": "string", "name": "_description", "type": "string"}
    ],
    "name": "submitRecycling",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint256", "name": "_centerId", "type": "uint256"},
      {"internalType": "uint256", "name": "_tokenAmount", "type": "uint256"}
    ],
    "name": "donateTokens",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_donationId", "type": "uint256"}],
    "name": "approveDonation",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "_creator", "type": "address"}],
    "name": "approveCreator",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "_creator", "type": "address"}],
    "name": "revokeCreator",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "_creator", "type": "address"}],
    "name": "isApprovedCreator",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "_donationId", "type": "uint256"}],
    "name": "rejectDonation",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "centerId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"}
    ],
    "name": "CenterRegistered",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "donationId", "type": "uint256"},
      {"indexed": true, "internalType": "uint256", "name": "centerId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "donor", "type": "address"}
    ],
    "name": "DonationSubmitted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "uint256", "name": "donationId", "type": "uint256"}],
    "name": "DonationApproved",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "uint256", "name": "donationId", "type": "uint256"}],
    "name": "DonationRejected",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "centerId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "donor", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "TokensDonated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "address", "name": "creator", "type": "address"}],
    "name": "CreatorApproved",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "address", "name": "creator", "type": "address"}],
    "name": "CreatorRevoked",
    "type": "event"
  }
]`

// ProfileABI covers the on-chain user profile and aesthetics registry.
const ProfileABI = `[
  {
    "inputs": [{"internalType": "address", "name": "_user", "type": "address"}],
    "name": "getUserProfile",
    "outputs": [
      {"internalType": "string", "name": "displayName", "type": "string"},
      {"internalType": "string", "name": "avatarURI", "type": "string"},
      {"internalType": "bool", "name": "exists", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "_displayName", "type": "string"},
      {"internalType": "string", "name": "_avatarURI", "type": "string"}
    ],
    "name": "setUserProfile",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "_user", "type": "address"}],
    "name": "getUserAesthetics",
    "outputs": [
      {"internalType": "string", "name": "theme", "type": "string"},
      {"internalType": "bool", "name": "reducedMotion", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "_theme", "type": "string"},
      {"internalType": "bool", "name": "_reducedMotion", "type": "bool"}
    ],
    "name": "setUserAesthetics",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [{"indexed": true, "internalType": "address", "name": "user", "type": "address"}],
    "name": "ProfileUpdated",
    "type": "event"
  }
]`

// Contracts holds the parsed ABIs and deployed addresses of the four
// GreenLoop contracts.
type Contracts struct {
	Token    common.Address
	Market   common.Address
	Donation common.Address
	Profile  common.Address

	TokenABI    abi.ABI
	MarketABI   abi.ABI
	DonationABI abi.ABI
	ProfileABI  abi.ABI
}

// NewContracts parses the embedded ABIs and validates the addresses.
func NewContracts(token, market, donation, profile string) (*Contracts, error) {
	c := &Contracts{}
	for _, a := range []struct {
		name string
		addr string
		dst  *common.Address
	}{
		{"token", token, &c.Token},
		{"marketplace", market, &c.Market},
		{"donation", donation, &c.Donation},
		{"profile", profile, &c.Profile},
	} {
		if !common.IsHexAddress(a.addr) {
			return nil, fmt.Errorf("invalid %s contract address %q", a.name, a.addr)
		}
		*a.dst = common.HexToAddress(a.addr)
	}

	var err error
	if c.TokenABI, err = abi.JSON(strings.NewReader(GreenTokenABI)); err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	if c.MarketABI, err = abi.JSON(strings.NewReader(MarketplaceABI)); err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}
	if c.DonationABI, err = abi.JSON(strings.NewReader(DonationABI)); err != nil {
		return nil, fmt.Errorf("parse donation abi: %w", err)
	}
	if c.ProfileABI, err = abi.JSON(strings.NewReader(ProfileABI)); err != nil {
		return nil, fmt.Errorf("parse profile abi: %w", err)
	}
	return c, nil
}
